// Package main is rfqctl, the operator CLI for the RFQ desk gateway. It
// submits requests, delivers client decisions and inspects running RFQs.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var gatewayURL string

func main() {
	root := &cobra.Command{
		Use:           "rfqctl",
		Short:         "Operate the RFQ desk gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gatewayURL, "gateway", envOr("RFQDESK_GATEWAY_URL", "http://localhost:8080"), "gateway base URL")

	root.AddCommand(submitCmd(), respondCmd(), statusCmd(), pricingCmd(), resultCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func submitCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an RFQ from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			// Fail on malformed input before it hits the wire.
			if !json.Valid(payload) {
				return fmt.Errorf("%s is not valid JSON", file)
			}
			return call(http.MethodPost, "/api/rfq", payload)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the RFQ JSON document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func respondCmd() *cobra.Command {
	var action, hash, message string
	cmd := &cobra.Command{
		Use:   "respond <rfq-id>",
		Short: "Deliver a client decision (ACCEPT, REJECT or REFRESH)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{
				"action":          action,
				"term_sheet_hash": hash,
				"message":         message,
			})
			if err != nil {
				return err
			}
			return call(http.MethodPost, "/api/rfq/"+args[0]+"/response", payload)
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "ACCEPT, REJECT or REFRESH")
	cmd.Flags().StringVar(&hash, "hash", "", "term sheet document hash (required for ACCEPT)")
	cmd.Flags().StringVar(&message, "message", "", "optional free-text message")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <rfq-id>",
		Short: "Show the RFQ's current lifecycle status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/rfq/"+args[0]+"/status", nil)
		},
	}
}

func pricingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pricing <rfq-id>",
		Short: "Show the latest indicative pricing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/rfq/"+args[0]+"/pricing", nil)
		},
	}
}

func resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <rfq-id>",
		Short: "Wait for and show the terminal result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/rfq/"+args[0]+"/result", nil)
		},
	}
}

// call performs the request and pretty-prints the JSON response. Non-2xx
// responses become errors carrying the gateway's message.
func call(method, path string, payload []byte) error {
	client := &http.Client{Timeout: 2 * time.Minute}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, gatewayURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		raw = pretty.Bytes()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d:\n%s", resp.StatusCode, raw)
	}
	fmt.Println(string(raw))
	return nil
}
