package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trackit/internal/cli/formatter"
	"trackit/internal/model"
	"trackit/internal/service"
)

// App holds what the commands need. Now and Location decide "today".
type App struct {
	Tasks    *service.TaskService
	Now      func() time.Time
	Location *time.Location
	Color    bool
	// RunBot starts the Telegram front end and blocks until ctx is done.
	RunBot func(ctx context.Context) error
}

// NewRootCmd creates the top-level "trackit" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "trackit",
		Short:         "Daily task and points tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			formatter.SetColor(app.Color)
		},
	}

	root.AddCommand(
		newTasksCmd(app),
		newAddCmd(app),
		newDoneCmd(app, true),
		newDoneCmd(app, false),
		newEditCmd(app),
		newDeleteCmd(app),
		newTemplatesCmd(app),
		newStatsCmd(app),
		newBotCmd(app),
	)
	return root
}

func (a *App) today() model.Date {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	return model.DateOf(now().In(loc))
}

// dateFlag resolves a --date value, defaulting to today.
func (a *App) dateFlag(raw string) (model.Date, error) {
	if raw == "" {
		return a.today(), nil
	}
	day, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, fmt.Errorf("--date: %w", err)
	}
	return day, nil
}
