package speech

// NeutralExpressions is used when no model is configured.
func NeutralExpressions() []Expression {
	return []Expression{
		{Expresion: "neutral", Tiempo: 0, Intensidad: 1},
	}
}

// BlinkExpressions is used when the model reply cannot be used.
func BlinkExpressions() []Expression {
	return []Expression{
		{Expresion: "neutral", Tiempo: 0, Intensidad: 1},
		{Expresion: "blink", Tiempo: 1, Intensidad: 1},
		{Expresion: "neutral", Tiempo: 2, Intensidad: 1},
	}
}

// IdleAnimation is the last resort when the animation service cannot even
// serve its idle sequence.
func IdleAnimation(baseURL string) Animation {
	return Animation{
		"sequence": IdleSequence,
		"keyframes": []any{
			map[string]any{
				"vrma":      baseURL + "/poses/standing_key_00.vrma",
				"duration":  2.0,
				"crossfade": 0.25,
			},
		},
		"breathing": true,
		"delay":     0.0,
	}
}
