package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantfeeds/candlekeeper/src/models"
)

type RunArgs struct {
	Addr   string
	Symbol string
}

type candlesResponse struct {
	Symbol string          `json:"symbol"`
	Values []models.Candle `json:"values"`
}

func Run(args RunArgs) (candlesResponse, error) {
	u, err := url.Parse(args.Addr)
	if err != nil {
		return candlesResponse{}, fmt.Errorf("failed to parse addr: %w", err)
	}

	u.Path = "/candles"
	u.RawQuery = url.Values{"symbol": []string{args.Symbol}}.Encode()

	res, err := http.Get(u.String())
	if err != nil {
		return candlesResponse{}, fmt.Errorf("failed to fetch candles: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return candlesResponse{}, fmt.Errorf("failed to fetch candles, http code %v", res.Status)
	}

	var dto candlesResponse
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return candlesResponse{}, fmt.Errorf("failed to decode json: %w", err)
	}

	return dto, nil
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/dump_candles/main.go --symbol EURUSD",
	Short: "Prints a symbol's current candle window as a table.",
	Run: func(cmd *cobra.Command, args []string) {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			log.Fatalf("error getting addr: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		result, err := Run(RunArgs{Addr: addr, Symbol: symbol})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Time", "Open", "High", "Low", "Close", "Volume"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)

		for _, c := range result.Values {
			table.Append([]string{
				c.Time,
				fmt.Sprintf("%.5f", c.Open),
				fmt.Sprintf("%.5f", c.High),
				fmt.Sprintf("%.5f", c.Low),
				fmt.Sprintf("%.5f", c.Close),
				fmt.Sprintf("%.2f", c.Volume),
			})
		}

		fmt.Printf("%s: %d candles\n", result.Symbol, len(result.Values))
		table.Render()
	},
}

func main() {
	runCmd.Flags().String("addr", "http://localhost:3000", "base address of a running candlekeeper server")
	runCmd.Flags().String("symbol", "", "symbol to dump")

	if err := runCmd.MarkFlagRequired("symbol"); err != nil {
		log.Fatalf("failed to mark symbol flag required: %v", err)
	}

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("failed to execute: %v", err)
	}
}
