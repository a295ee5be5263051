package render

import "strings"

// docBlock is a doc comment split into prose and tags.
type docBlock struct {
	Description string
	Params      map[string]string
	Return      string
	Throws      []string
	See         []string
}

func parseDocBlock(doc string) docBlock {
	block := docBlock{Params: map[string]string{}}
	var desc []string
	var tag string
	var body []string
	flush := func() {
		if tag == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		switch tag {
		case "param":
			name, rest := splitParamTag(text)
			if name != "" {
				block.Params[name] = rest
			}
		case "return", "returns":
			block.Return = text
		case "throws":
			block.Throws = append(block.Throws, text)
		case "see":
			block.See = append(block.See, text)
		}
		tag, body = "", nil
	}
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			flush()
			name, rest, _ := strings.Cut(trimmed[1:], " ")
			tag = strings.ToLower(name)
			body = []string{rest}
			continue
		}
		if tag != "" {
			body = append(body, trimmed)
			continue
		}
		desc = append(desc, line)
	}
	flush()
	block.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return block
}

// splitParamTag parses "[Type] $name description".
func splitParamTag(text string) (string, string) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if strings.HasPrefix(f, "$") || strings.HasPrefix(f, "...$") {
			return strings.TrimPrefix(f, "..."), strings.Join(fields[i+1:], " ")
		}
	}
	return "", ""
}
