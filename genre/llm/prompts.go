package llm

const bookPrompt = `El libro "%s" no está en nuestra base de datos.

Basándote en tu conocimiento, ¿de qué género(s) es este libro?

Responde SOLO con los géneros separados por comas, sin explicaciones adicionales.
Formato: Género1, Género2, Género3

Ejemplos:
- Harry Potter: Fantasía juvenil, Aventura, Literatura infantil
- Cien años de soledad: Realismo mágico, Novela histórica, Literatura latinoamericana
- El código Da Vinci: Thriller, Misterio, Ficción histórica

Libro: %s
Géneros:`

const authorPrompt = `El autor "%s" no está en nuestra base de datos.

Basándote en tu conocimiento, ¿qué géneros literarios escribe este autor?

Responde SOLO con los géneros separados por comas, sin explicaciones adicionales.
Formato: Género1, Género2, Género3

Ejemplos:
- Isabel Allende: Realismo mágico, Novela histórica, Literatura latinoamericana
- Stephen King: Terror psicológico, Horror sobrenatural, Thriller
- J.K. Rowling: Fantasía juvenil, Aventura, Literatura infantil

Autor: %s
Géneros:`
