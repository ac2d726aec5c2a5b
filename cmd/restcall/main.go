package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/samvad-restkit/internal/app"
	"github.com/samvad-hq/samvad-restkit/internal/config"
	"github.com/samvad-hq/samvad-restkit/internal/logger"
	"github.com/samvad-hq/samvad-restkit/pkg/restclient"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if msgs := restclient.Messages(err); restclient.IsBusiness(err) && len(msgs) > 0 {
			for _, m := range msgs {
				fmt.Fprintln(os.Stderr, m)
			}
		} else {
			fmt.Fprintf(os.Stderr, "restcall failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("restcall", pflag.ContinueOnError)
	service := flags.String("service", "", "service id from the services file")
	verb := flags.String("verb", app.VerbGet, "get, get-list, post or post-params")
	controller := flags.String("controller", "", "controller path segment")
	method := flags.String("method", "", "method path segment")
	params := flags.StringArray("param", nil, "query parameter as key=value (repeatable)")
	headers := flags.StringArray("header", nil, "request header as key=value (repeatable)")
	body := flags.String("body", "", "JSON body for the post verb")
	flags.String("config_file", "", "optional YAML config file")
	flags.String("services_file", "", "services registry file")
	flags.String("log_level", "", "log level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(changedOnly(flags))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	caller, err := app.NewCaller(cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize caller", "error", err)
		return err
	}

	call := app.Call{
		Service:    *service,
		Verb:       *verb,
		Controller: *controller,
		Method:     *method,
		Params:     parseParams(*params),
		Headers:    parseHeaders(*headers),
	}
	if strings.TrimSpace(*body) != "" {
		if !json.Valid([]byte(*body)) {
			return fmt.Errorf("--body is not valid JSON")
		}
		call.Body = json.RawMessage(*body)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := caller.Invoke(ctx, call)
	if err != nil {
		return err
	}
	return printJSON(raw)
}

// changedOnly returns a flag set holding just the config flags the user set,
// so unset flags do not shadow env or file values.
func changedOnly(flags *pflag.FlagSet) *pflag.FlagSet {
	out := pflag.NewFlagSet("config", pflag.ContinueOnError)
	for _, name := range []string{"config_file", "services_file", "log_level"} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			out.AddFlag(f)
		}
	}
	return out
}

func splitPair(s string) (string, string, bool) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", false
	}
	return k, v, true
}

func parseParams(raw []string) map[string][]string {
	out := make(map[string][]string, len(raw))
	for _, p := range raw {
		if k, v, ok := splitPair(p); ok {
			out[k] = append(out[k], v)
		}
	}
	return out
}

func parseHeaders(raw []string) map[string]string {
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		if k, v, ok := splitPair(h); ok {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

func printJSON(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	buf.WriteByte('\n')
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}
