// Package keytool implements the credential maintenance commands: encrypting
// keys stored before encryption at rest, decrypting them back for a
// rollback, and re-encrypting them under a new root secret.
package keytool

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/cryptox"
	"github.com/dmitrijs2005/doccoon/internal/flagx"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

const (
	CmdEncryptLegacy = "encrypt-legacy"
	CmdDecryptAll    = "decrypt-all"
	CmdRotate        = "rotate"
)

var (
	ErrUsage       = errors.New("usage: keytool encrypt-legacy|decrypt-all|rotate [-n new-secret] [server flags]")
	ErrEmptySecret = errors.New("new secret must not be empty")
)

// Credentials is the part of the credential service the commands drive.
type Credentials interface {
	EncryptLegacy(ctx context.Context) (services.BatchReport, error)
	DecryptAll(ctx context.Context) (services.BatchReport, error)
	Rotate(ctx context.Context, next *cryptox.Vault) (services.BatchReport, error)
}

// Options is a parsed keytool command line.
type Options struct {
	Command   string
	NewSecret string
}

// ParseArgs reads the command name from the first argument and -n from the
// rest. Server flags are left for the config package.
func ParseArgs(args []string) (Options, error) {
	if len(args) == 0 {
		return Options{}, ErrUsage
	}
	opts := Options{Command: args[0]}
	switch opts.Command {
	case CmdEncryptLegacy, CmdDecryptAll, CmdRotate:
	default:
		return Options{}, fmt.Errorf("unknown command %q: %w", opts.Command, ErrUsage)
	}

	fs := flag.NewFlagSet("keytool", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.NewSecret, "n", "", "new root secret for rotate")
	if err := fs.Parse(flagx.FilterArgs(args[1:], []string{"-n"})); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Run executes one command and prints its report to out. For rotate the new
// secret comes from opts or, when absent, from readSecret.
func Run(ctx context.Context, creds Credentials, opts Options, params cryptox.KDFParams, readSecret func() (string, error), out io.Writer) error {
	var (
		report services.BatchReport
		err    error
	)

	switch opts.Command {
	case CmdEncryptLegacy:
		report, err = creds.EncryptLegacy(ctx)
	case CmdDecryptAll:
		report, err = creds.DecryptAll(ctx)
	case CmdRotate:
		var next *cryptox.Vault
		next, err = newVault(opts.NewSecret, params, readSecret)
		if err != nil {
			return err
		}
		report, err = creds.Rotate(ctx, next)
	default:
		return ErrUsage
	}
	if err != nil {
		return fmt.Errorf("%s: %w", opts.Command, err)
	}

	_, err = fmt.Fprintf(out, "%s: %s\n", opts.Command, report)
	return err
}

func newVault(secret string, params cryptox.KDFParams, readSecret func() (string, error)) (*cryptox.Vault, error) {
	if secret == "" && readSecret != nil {
		s, err := readSecret()
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		secret = s
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return cryptox.NewVault([]byte(secret), params)
}
