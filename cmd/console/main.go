package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Otiahaill3/Mpesa-demo/internal/console"
	"github.com/Otiahaill3/Mpesa-demo/internal/logging"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "payments API base URL")
	refreshDelay := flag.Duration("refresh-delay", 2*time.Second, "delay before the post-submission ledger refresh")
	exportDir := flag.String("export-dir", ".", "directory for CSV exports")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger := logging.NewWithWriter(os.Stderr, *logLevel)

	ctrl := console.NewController(console.Config{
		BaseURL:      *apiURL,
		RefreshDelay: *refreshDelay,
		ExportDir:    *exportDir,
	}, logger)
	defer ctrl.Close()

	ctx := context.Background()
	ctrl.Refresh(ctx)

	fmt.Println("M-Pesa payment console. Commands: pay <phone> <amount> <order> <description>, list, export, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "pay":
			if len(fields) < 5 {
				fmt.Println("usage: pay <phone> <amount> <order_number> <description>")
				continue
			}
			notice := ctrl.Submit(ctx, console.Form{
				Phone:       fields[1],
				Amount:      fields[2],
				OrderNumber: fields[3],
				Description: strings.Join(fields[4:], " "),
			})
			fmt.Println(notice)
		case "list":
			ctrl.Refresh(ctx)
			printTransactions(ctrl.State())
		case "export":
			path, err := ctrl.Export(ctx)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				continue
			}
			fmt.Printf("saved %s\n", path)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func printTransactions(state console.State) {
	if len(state.Transactions) == 0 {
		fmt.Println("no transactions yet")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPHONE\tAMOUNT\tDESCRIPTION\tSTATUS\tTIME")
	for _, tx := range state.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s [%s]\t%s\n",
			tx.OrderNumber,
			tx.Phone,
			console.FormatAmount(tx.Amount),
			tx.Description,
			tx.Status,
			console.ClassifyStatus(tx.Status),
			console.FormatTimestamp(tx.Timestamp),
		)
	}
	w.Flush()
}
