package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc/metadata"

	"github.com/and161185/bliss-auth/internal/api/authv1"
)

var errUsage = errors.New("usage")

// runner executes one subcommand against a client.
type runner struct {
	cli    authv1.ClientAuthClient
	out    io.Writer
	bearer string
	load   func() (tokenFile, error)
	save   func(tokenFile) error
}

func (r *runner) run(ctx context.Context, cmd string, args []string) error {
	var (
		resp *authv1.AuthResponse
		err  error
	)
	switch cmd {
	case "register":
		fs := flag.NewFlagSet("register", flag.ContinueOnError)
		email := fs.String("email", "", "email")
		user := fs.String("u", "", "username")
		pass := fs.String("p", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *email == "" || *pass == "" {
			return errors.New("need -email and -p")
		}
		resp, err = r.cli.RegisterBasic(ctx, &authv1.RegisterBasicRequest{Email: *email, Username: *user, Password: *pass})

	case "oauth":
		fs := flag.NewFlagSet("oauth", flag.ContinueOnError)
		provider := fs.String("provider", "", "google or facebook")
		code := fs.String("code", "", "authorization code")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *provider == "" || *code == "" {
			return errors.New("need -provider and -code")
		}
		resp, err = r.cli.OAuthCallback(ctx, &authv1.OAuthCallbackRequest{Provider: *provider, Code: *code})

	case "reissue":
		fs := flag.NewFlagSet("reissue", flag.ContinueOnError)
		email := fs.String("email", "", "email")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *email == "" {
			return errors.New("need -email")
		}
		resp, err = r.cli.ReissueTransient(ctx, &authv1.ReissueTransientRequest{Email: *email})

	case "profile":
		req, perr := profileRequest(args)
		if perr != nil {
			return perr
		}
		if ctx, err = r.withBearer(ctx); err != nil {
			return err
		}
		resp, err = r.cli.CompleteProfile(ctx, req)

	case "promote":
		if ctx, err = r.withBearer(ctx); err != nil {
			return err
		}
		resp, err = r.cli.Promote(ctx, &authv1.PromoteRequest{})

	case "rotate":
		if ctx, err = r.withBearer(ctx); err != nil {
			return err
		}
		resp, err = r.cli.Rotate(ctx, &authv1.RotateRequest{})

	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	if resp.Token != "" && r.save != nil {
		if err := r.save(tokenFile{
			Token:     resp.Token,
			TokenType: resp.TokenType,
			ExpiresAt: time.Unix(resp.ExpiresAt, 0),
		}); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	return printJSON(r.out, resp)
}

func (r *runner) withBearer(ctx context.Context) (context.Context, error) {
	tok := r.bearer
	if tok == "" {
		tf, err := r.load()
		if err != nil {
			return ctx, err
		}
		tok = tf.Token
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok), nil
}

// profileRequest parses profile flags. Field validation happens server side.
func profileRequest(args []string) (*authv1.CompleteProfileRequest, error) {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	category := fs.String("category", "", "client category")
	dob := fs.String("dob", "", "date of birth, YYYY-MM-DD")
	country := fs.String("country", "", "origin country")
	contact := fs.Int64("contact", 0, "contact number")
	bio := fs.String("bio", "", "bio")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *category == "" || *dob == "" || *country == "" {
		return nil, errors.New("need -category -dob -country")
	}
	req := &authv1.CompleteProfileRequest{
		Category:      *category,
		DateOfBirth:   *dob,
		OriginCountry: *country,
		Bio:           *bio,
	}
	if *contact != 0 {
		req.ContactNumber = contact
	}
	return req, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
