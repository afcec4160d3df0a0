// Command mcp runs the studiolink MCP server on stdio, proxying tool calls
// to a control endpoint. Diagnostics go to stderr; stdout carries only
// JSON-RPC traffic.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studiolink/studiolink/internal/mcp"
	"github.com/studiolink/studiolink/pkg/client"
)

const mcpLoggerPrefix = "mcp "

func main() {
	endpoint := flag.String("endpoint", client.DefaultBaseURL, "Control endpoint base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-request timeout for control calls")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, mcpLoggerPrefix, log.LstdFlags|log.Lmicroseconds)

	bridge := client.New(*endpoint, client.WithTimeout(*timeout))
	srv := mcp.NewServer(bridge, logger)

	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Fatalf("mcp server: %v", err)
	}
	logger.Print("mcp server stopped")
}
