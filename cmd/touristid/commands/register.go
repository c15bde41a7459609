package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"touristid/internal/app"
	"touristid/internal/platform/config"
	"touristid/internal/platform/logger"
	"touristid/internal/registration/models"
	regservice "touristid/internal/registration/service"
	"touristid/pkg/requestcontext"
)

const defaultOTP = "123456"

// Answers is the YAML answers file driving a local registration.
type Answers struct {
	Fields map[string]any `yaml:"fields"`
	// Documents maps a slot to a file path, relative to the answers file.
	Documents map[string]string `yaml:"documents"`
	OTP       string            `yaml:"otp"`
}

func registerCmd() *cobra.Command {
	var (
		answersPath string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Complete a registration locally from an answers file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(answersPath)
			if err != nil {
				return fmt.Errorf("read answers: %w", err)
			}
			var answers Answers
			if err := yaml.Unmarshal(raw, &answers); err != nil {
				return fmt.Errorf("parse answers: %w", err)
			}

			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			if verbose {
				log = logger.NewWithWriter(cmd.ErrOrStderr(), "debug", "text")
			}
			return runRegister(cmd.Context(), answers, filepath.Dir(answersPath), cmd.OutOrStdout(), log)
		},
	}
	cmd.Flags().StringVarP(&answersPath, "answers", "a", "", "YAML answers file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log service activity to stderr")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// runRegister walks the wizard through every step in memory and prints the
// summary and the issued Tourist ID.
func runRegister(ctx context.Context, answers Answers, baseDir string, out io.Writer, log *slog.Logger) error {
	a, err := app.New(ctx, config.Default(), log, app.WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		return err
	}
	defer a.Close()
	svc := a.Registration

	ctx = requestcontext.WithDevice(ctx, "touristid CLI")
	started, err := svc.Start(ctx)
	if err != nil {
		return err
	}
	sid := started.SessionID

	if len(answers.Fields) > 0 {
		if _, err := svc.UpdateFields(ctx, sid, normaliseFields(answers.Fields)); err != nil {
			return fmt.Errorf("fields: %w", err)
		}
	}
	for _, slot := range models.Slots {
		path, ok := answers.Documents[string(slot)]
		if !ok {
			continue
		}
		up, err := readUpload(baseDir, path)
		if err != nil {
			return err
		}
		if _, err := svc.AttachDocument(ctx, sid, slot, up); err != nil {
			return fmt.Errorf("%s: %w", slot, err)
		}
	}

	view, err := svc.Get(ctx, sid)
	if err != nil {
		return err
	}
	if view.OTP.Required {
		res, err := svc.RequestOTP(ctx, sid)
		if err != nil {
			return fmt.Errorf("otp: %w", err)
		}
		fmt.Fprintln(out, res.Message)
		code := answers.OTP
		if code == "" {
			code = defaultOTP
		}
		if res, err = svc.VerifyOTP(ctx, sid, code); err != nil {
			return fmt.Errorf("otp: %w", err)
		}
		fmt.Fprintln(out, res.Message)
	}

	for view.Step < models.LastStep {
		label := view.StepLabel
		if view, err = svc.Advance(ctx, sid); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
	}
	printSummary(out, view.Summary)

	res, err := svc.Submit(ctx, sid)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fmt.Fprintln(out, res.Message)
	fmt.Fprintf(out, "Registration: %s\n", res.RegistrationID)
	return nil
}

// normaliseFields turns YAML scalars into the strings and booleans the
// wizard accepts; an unquoted ID number decodes as an int.
func normaliseFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case bool, string:
			out[k] = v
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

func readUpload(baseDir, path string) (regservice.Upload, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return regservice.Upload{}, fmt.Errorf("read document: %w", err)
	}
	contentType, _, _ := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(path)))
	return regservice.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func printSummary(out io.Writer, s models.Summary) {
	fmt.Fprintln(out, "Registration summary")
	fmt.Fprintf(out, "  Name:            %s\n", s.Name)
	fmt.Fprintf(out, "  Nationality:     %s\n", s.Nationality)
	fmt.Fprintf(out, "  ID verification: %s\n", s.IDVerification)
	fmt.Fprintf(out, "  Visit purpose:   %s\n", s.VisitPurpose)
	fmt.Fprintf(out, "  Duration:        %s\n", s.Duration)
	fmt.Fprintf(out, "  Documents:       %s\n", s.DocumentsUploaded)
}
