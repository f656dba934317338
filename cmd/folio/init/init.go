// Package initcmder provides the init command for initializing a local
// .folio directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/dotdir"
)

const (
	configFile = "config.toml"

	fetchTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .folio/ directory in the current working directory.

Creates a local .folio/ directory that takes precedence over the default
~/.folio/ directory for configuration and the default SQLite database, and
writes a config.toml into it.

The --preset flag selects the written configuration. It accepts a preset
name (local, memory, server) or an http(s) URL serving a config.toml.
Without --preset an existing config.toml is left untouched.

Examples:
  folio init
  folio init --preset memory
  folio init --preset https://example.com/folio/config.toml`

const initShortDesc string = "Initialize a local .folio/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Preset name (%s) or URL of a config.toml", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	dir, err := dotdir.NewManager().Local()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, configFile)
	if c.preset == "" {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(c.out, "  %s Already initialized: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
			return nil
		}
	}

	data, err := c.configBytes(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(c.out, "  %s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	return nil
}

// configBytes returns the config.toml contents for the selected preset.
func (c *initCommander) configBytes(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(c.preset, "http://") || strings.HasPrefix(c.preset, "https://") {
		return fetchConfig(ctx, c.preset)
	}

	cfg := config.NewDefaultConfig()
	if c.preset != "" {
		var err error
		if cfg, err = config.PresetConfig(c.preset); err != nil {
			return nil, err
		}
	}
	return config.EncodeConfigTOML(cfg)
}

// fetchConfig downloads and validates a remote config.toml. The body is
// written as served so comments survive.
func fetchConfig(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	if _, err := config.ParseConfigTOML(data); err != nil {
		return nil, err
	}
	return data, nil
}
