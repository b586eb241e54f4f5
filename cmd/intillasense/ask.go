package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/recommend"
)

type askOptions struct {
	farm      int
	text      string
	imagePath string
	mode      string
}

func newAskCmd(c *cli) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask for a single recommendation",
		Long: `Sends one question through the same pipeline as the HTTP API and prints
the reply: indented JSON in structured mode, raw text in text mode.

Example:
  intillasense ask --farm 1 --text "Should I chisel plow this fall?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.ask(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.farm, "farm", 0, "farm number (1 Illinois, 2 North Dakota)")
	cmd.Flags().StringVar(&opts.text, "text", "", "question for the advisor")
	cmd.Flags().StringVar(&opts.imagePath, "image", "", "path to a field photo")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "reply mode: structured or text (default from config)")
	_ = cmd.MarkFlagRequired("farm")
	return cmd
}

func (c *cli) ask(cmd *cobra.Command, opts askOptions) error {
	req := recommend.NewChatRequest(opts.farm, opts.text)
	req.Mode = opts.mode
	req.Channel = recommend.ChannelCLI

	if opts.imagePath != "" {
		data, err := os.ReadFile(opts.imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
	}

	rt, err := c.openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.service.Handle(cmd.Context(), req)
	if err != nil {
		return err
	}

	if res.Reply.Mode == advisor.ModeText {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Reply.Text)
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Reply.Recommendation)
}
