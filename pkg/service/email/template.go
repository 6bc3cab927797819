package email

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// SubmittedOnLayout formats the completion time in notification mails.
const SubmittedOnLayout = "2 Jan, 2006 03:04 PM"

//go:embed templates/completion.html
var completionHTML string

var completionTemplate = template.Must(template.New("completion").Parse(completionHTML))

// CompletionData is the content of a submission notification.
type CompletionData struct {
	SessionID     string
	SubmittedOn   time.Time
	AgentName     string
	WorkspaceName string
	Title         string
	URL           string
}

// CompletionSubject builds the notification subject line.
func CompletionSubject(workspaceName, agentName string) string {
	return "✅ New Submission in [" + workspaceName + "] — " + agentName
}

// RenderCompletion returns the subject and HTML body of a submission
// notification.
func RenderCompletion(data CompletionData) (string, string, error) {
	view := struct {
		SessionID     string
		SubmittedOn   string
		AgentName     string
		WorkspaceName string
		Title         string
		URL           string
		Year          int
	}{
		SessionID:     data.SessionID,
		SubmittedOn:   data.SubmittedOn.Format(SubmittedOnLayout),
		AgentName:     data.AgentName,
		WorkspaceName: data.WorkspaceName,
		Title:         data.Title,
		URL:           data.URL,
		Year:          data.SubmittedOn.Year(),
	}

	var buf bytes.Buffer
	if err := completionTemplate.Execute(&buf, view); err != nil {
		return "", "", goerr.Wrap(err, "failed to render completion mail", goerr.V("session_id", data.SessionID))
	}

	return CompletionSubject(data.WorkspaceName, data.AgentName), buf.String(), nil
}
