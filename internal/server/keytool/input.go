package keytool

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// PromptSecret asks for the new root secret on the terminal without echo.
func PromptSecret(w io.Writer) func() (string, error) {
	return func() (string, error) {
		if _, err := fmt.Fprint(w, "New secret: "); err != nil {
			return "", err
		}
		b, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
