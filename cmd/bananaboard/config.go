package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/bananaboard/internal/config"
)

type configCmd struct {
	*root
	fs    *flag.FlagSet
	in    io.Reader
	out   io.Writer
	store func() (config.SecretStore, error)
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs, in: os.Stdin, out: os.Stdout, store: openKeyring}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func openKeyring() (config.SecretStore, error) {
	ks, err := config.NewKeyringStore()
	if err != nil {
		return nil, err
	}
	return ks, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	subCmd := args[0]
	switch subCmd {
	case "print":
		_, err := fmt.Fprint(c.out, c.root.config.String())
		return err
	case "save":
		return c.runSave()
	case "path":
		return c.runPath()
	case "set-key":
		return c.runSetKey(args[1:])
	case "clear-key":
		return c.runClearKey()
	default:
		return fmt.Errorf("unknown config command: %s", subCmd)
	}
}

func (c *configCmd) runSave() error {
	loader := config.NewLoader(version, configPathOverride)
	path, err := loader.Save(c.root.config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}

func (c *configCmd) runPath() error {
	loader := config.NewLoader(version, configPathOverride)
	path := loader.GetConfigPath()
	if path == "" {
		var err error
		if path, err = loader.SavePath(); err != nil {
			return err
		}
		path += " (not created)"
	}
	_, err := fmt.Fprintln(c.out, path)
	return err
}

func (c *configCmd) runSetKey(args []string) error {
	key := strings.Join(args, "")
	if key == "" {
		fmt.Fprint(os.Stderr, "API key: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return fmt.Errorf("no key given")
	}
	store, err := c.store()
	if err != nil {
		return err
	}
	if err := store.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	fmt.Fprintln(os.Stderr, "API key stored in the system keyring")
	return nil
}

func (c *configCmd) runClearKey() error {
	store, err := c.store()
	if err != nil {
		return err
	}
	if err := store.DeleteAPIKey(); err != nil {
		return fmt.Errorf("failed to remove key: %w", err)
	}
	fmt.Fprintln(os.Stderr, "API key removed from the system keyring")
	return nil
}
