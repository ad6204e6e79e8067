package senddiagnosisnotification

import (
	"strings"
	"text/template"

	"policyfund-workers/internal/funds"
)

var templateFuncs = template.FuncMap{
	"won": funds.FormatWon,
}

var (
	subjectTemplate = template.Must(template.New("subject").Funcs(templateFuncs).Parse(
		`Your policy fund diagnosis: grade {{.Grade}}`))

	emailTemplate = template.Must(template.New("email").Funcs(templateFuncs).Parse(`Your SOHO diagnosis is ready.

Grade: {{.Grade}}
Maximum loan limit: {{won .MaxLoanLimit}}
{{if .RecommendedFunds}}Recommended funds:
{{range .RecommendedFunds}}- {{.Name}}: up to {{won .MaxAmount}}, {{.InterestRate}}
{{end}}{{else}}No fund is currently fully eligible.
{{end}}
{{.Details}}
`))

	smsTemplate = template.Must(template.New("sms").Funcs(templateFuncs).Parse(
		`[Policy fund] Grade {{.Grade}}, limit {{won .MaxLoanLimit}}, {{len .RecommendedFunds}} eligible fund(s).`))
)

func render(t *template.Template, input *Input) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, input); err != nil {
		return "", err
	}
	return b.String(), nil
}
