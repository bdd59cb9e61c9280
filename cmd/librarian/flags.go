package main

import "time"

type StoreFlags struct {
	CatalogDriver   string `help:"Catalog store: sqlite, postgres or memory" default:"sqlite" enum:"sqlite,postgres,memory" env:"LIBRARIAN_CATALOG_DRIVER"`
	CatalogLocation string `help:"Catalog file path or postgres URL" default:"librarian.db" env:"LIBRARIAN_CATALOG_LOCATION"`
	MaxConns        int    `help:"Maximum open connections per store" default:"4"`
}

type EmbedderFlags struct {
	Embedder          string `help:"Embedding provider: hugot, openai, google or hash" default:"hugot" enum:"hugot,openai,google,hash" env:"LIBRARIAN_EMBEDDER"`
	EmbedderModel     string `help:"Embedding model identifier (provider default when empty)" default:""`
	EmbedderApiKey    string `help:"API key for hosted embeddings" default:"" env:"LIBRARIAN_EMBEDDER_API_KEY"`
	EmbedderDimension int    `help:"Embedding dimension for providers that accept one" default:"0"`
	EmbedderCacheSize int    `help:"Query embeddings kept in memory" default:"1024"`
	ModelDir          string `help:"Directory for downloaded ONNX models" default:"" env:"LIBRARIAN_MODEL_DIR"`
	OrtLibrary        string `help:"Path to the onnxruntime shared library" default:"" env:"LIBRARIAN_ORT_LIBRARY"`
}

type GeneratorFlags struct {
	Provider  string `help:"Language model provider for the agent: anthropic or openai" default:"anthropic" enum:"anthropic,openai" env:"LIBRARIAN_PROVIDER"`
	APIKey    string `help:"API key for the agent model" default:"" env:"LIBRARIAN_API_KEY"`
	Model     string `help:"Agent model identifier" default:"claude-haiku-4-5" env:"LIBRARIAN_MODEL"`
	BaseURL   string `help:"Override the provider API base URL" default:""`
	MaxTokens int    `help:"Maximum tokens per agent reply" default:"1024"`

	GenreProvider string        `help:"Provider for genre inference: anthropic, openai, google or none" default:"anthropic" enum:"anthropic,openai,google,none" env:"LIBRARIAN_GENRE_PROVIDER"`
	GenreAPIKey   string        `help:"API key for genre inference (agent key when empty)" default:"" env:"LIBRARIAN_GENRE_API_KEY"`
	GenreModel    string        `help:"Genre inference model (agent model when empty)" default:""`
	GenreTTL      time.Duration `help:"How long inferred genres are cached" default:"24h"`
}

type RetrievalFlags struct {
	OverFetch         int           `help:"Neighbours fetched before genre filtering when the store cannot pre-filter" default:"50"`
	SearchTimeout     time.Duration `help:"Timeout for each embedding and nearest-neighbour step" default:"5s"`
	ReferenceDistance float64       `help:"Largest cosine distance accepted when resolving a recommendation reference; 0 disables the bound" default:"0.45"`
	Limit             int           `help:"Books returned per tool call" default:"3"`
}

type AgentFlags struct {
	HistoryWindow time.Duration `help:"Conversation history the agent sees" default:"3m"`
	ToolAddrs     []string      `help:"UTCP HTTP tool servers to load extra tools from"`
}

type SpeechFlags struct {
	TTSURL        string        `name:"tts-url" help:"Text to speech service URL" default:"" env:"LIBRARIAN_TTS_URL"`
	VisemesURL    string        `help:"Viseme service URL" default:"" env:"LIBRARIAN_VISEMES_URL"`
	AnimationURL  string        `help:"Animation service URL" default:"" env:"LIBRARIAN_ANIMATION_URL"`
	SpeechTimeout time.Duration `help:"Timeout for speech and animation calls" default:"30s"`
	CueAPIKey     string        `help:"OpenAI API key for expression and animation choices" default:"" env:"OPENAI_API_KEY"`
	CueModel      string        `help:"Model for expression and animation choices" default:"gpt-4o-mini"`
	Acknowledge   bool          `help:"Send a short filler phrase before each answer" default:"true" negatable:""`
}
