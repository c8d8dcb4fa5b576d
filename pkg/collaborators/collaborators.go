// Package collaborators provides local implementations of the external
// systems action handlers call into: an HTTP client for API calls and
// webhooks, a file-based exporter, console delivery for messages, tasks and
// notifications, and a lexicon classifier. Deployments replace individual
// fields of actions.Collaborators with real integrations.
package collaborators

import (
	"log/slog"

	"github.com/weftlabs/weft/pkg/actions"
)

// Local builds the self-contained collaborator set used by the daemons when
// no external integrations are configured. Every action type is executable
// against it.
func Local(logger *slog.Logger, exportDir string) actions.Collaborators {
	console := NewConsole(logger)
	caller := NewHTTPCaller(logger)

	return actions.Collaborators{
		Messages:      console,
		Tasks:         console,
		Notifications: console,
		API:           caller,
		Webhooks:      caller,
		Exports:       NewFileExporter(exportDir),
		Classifier:    NewLexiconClassifier(),
	}
}
