package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const explainTemplate = `You are a world-class chemistry tutor for ChemLabXR.
Explain the concept of "{{.Topic}}" in the context of: {{.Context}}.
Keep it concise (under 100 words), engaging, and scientifically accurate.
Use simple language suitable for a high school student. Markdown is allowed.`

const quizTemplate = `Generate a single multiple-choice chemistry quiz question about: {{.Topic}}.
Provide exactly four options, the zero-based index of the correct option, and a one-sentence explanation.`

const reactionTemplate = `Predict the chemical reaction between: {{join .Names " and "}}.
Describe the visual result (color change, gas, precipitate) and the balanced equation.
If no reaction occurs, explain why. Keep it brief.`

type promptData struct {
	Topic   string
	Context string
	Names   []string
}

// prompts holds the parsed templates for each call.
type prompts struct {
	explain  *template.Template
	quiz     *template.Template
	reaction *template.Template
}

func newPrompts() (*prompts, error) {
	funcs := template.FuncMap{"join": strings.Join}
	p := &prompts{}
	var err error
	if p.explain, err = template.New("explain").Parse(explainTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse explain template: %w", err)
	}
	if p.quiz, err = template.New("quiz").Parse(quizTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse quiz template: %w", err)
	}
	if p.reaction, err = template.New("reaction").Funcs(funcs).Parse(reactionTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse reaction template: %w", err)
	}
	return p, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func (p *prompts) explainPrompt(topic, context string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrEmptyPrompt
	}
	return render(p.explain, promptData{Topic: topic, Context: context})
}

func (p *prompts) quizPrompt(topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrEmptyPrompt
	}
	return render(p.quiz, promptData{Topic: topic})
}

func (p *prompts) reactionPrompt(names []string) (string, error) {
	if len(names) == 0 {
		return "", ErrEmptyPrompt
	}
	return render(p.reaction, promptData{Names: names})
}
