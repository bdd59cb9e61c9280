package conversation

import "strings"

// Format renders turns one per line as "Usuario: ..." / "Agente: ...".
func Format(turns []Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		switch t.Role {
		case RoleHuman:
			sb.WriteString("Usuario: ")
		default:
			sb.WriteString("Agente: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
