package evaluator

import "strings"

// RenderReason substitutes every {name} placeholder in the template text
// with its value from the parameter bag. Placeholders without a matching
// parameter stay in the output verbatim. This is the template contract,
// not an error path: rule authors rely on unresolved markers being visible.
func RenderReason(templateText string, params map[string]string) string {
	var out strings.Builder

	rest := templateText

	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)

			break
		}

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			out.WriteString(rest)

			break
		}

		name := rest[open+1 : open+closing]

		out.WriteString(rest[:open])

		if value, ok := params[name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(rest[open : open+closing+1])
		}

		rest = rest[open+closing+1:]
	}

	return out.String()
}

// GenerateReason renders the reason template with the given id from a
// template collection. An unknown id falls back to the id itself so the
// output still identifies which justification was meant.
func GenerateReason(templates map[string]string, templateID string, params map[string]string) string {
	text, ok := templates[templateID]
	if !ok {
		return templateID
	}

	return RenderReason(text, params)
}
