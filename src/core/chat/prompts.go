package chat

import (
	"bytes"
	"fmt"
	"text/template"
)

const ContextualizeSystemPrompt = "Given a chat history and the latest user question " +
	"which might reference context in the chat history, " +
	"formulate a standalone question which can be understood " +
	"without the chat history. Do NOT answer the question, " +
	"just reformulate it if needed and otherwise return it as is."

const AnswerSystemTmpl = "You are an assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer " +
	"the question. If you don't know the answer, say that you " +
	"don't know. Use three sentences maximum and keep the " +
	"answer concise." +
	"\n\n" +
	"{{.Context}}"

// ConversationTmpl renders the chat history followed by the latest user
// input, as the prompt body for both pipeline stages
const ConversationTmpl = `{{- range .History }}
{{ .Role }}: {{ .Content }}
{{- end }}
user: {{ .Input }}`

// PromptData holds all the data needed for template execution
type PromptData struct {
	Context string
	History []Turn
	Input   string
}

func executeTemplate(name, tmpl string, data PromptData) (string, error) {
	var buf bytes.Buffer

	t := template.Must(template.New(name).Parse(tmpl))
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}
