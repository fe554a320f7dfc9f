package cli

import (
	stderrors "errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vantage-bi/vantage-go/errors"
)

// decodeError condenses wrapped client errors to their user-facing cause.
func decodeError(err error) error {
	switch {
	case errors.IsNotFound(err):
		return errors.ErrNotFound
	case errors.IsUnauthorized(err):
		return errors.ErrUnauthorized
	case errors.IsPermissionDenied(err):
		return errors.ErrPermissionDenied
	case stderrors.Is(err, errors.ErrNotSignedIn):
		return errors.ErrNotSignedIn
	default:
		return err
	}
}

func printError(cmd *cobra.Command, message string, err error) {
	if !Verbose {
		err = decodeError(err)
	}
	msg := color.New(color.FgRed).Sprintf(message, err)
	cmd.Println(msg)
}
