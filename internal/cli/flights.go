package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/domain"
)

var (
	searchFrom   string
	searchTo     string
	searchDate   string
	searchNumber string
)

var flightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "Search flight schedules",
}

var flightsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search flights between two airports on a date",
	Example: `  tripctl flights search --from ICN --to NRT --date 2025-06-01
  tripctl flights search --from ICN --to NRT --date 2025-06-01 --flight KE123`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.flights.Search(cmd.Context(), domain.FlightQuery{
			Origin:       searchFrom,
			Destination:  searchTo,
			Date:         searchDate,
			FlightNumber: searchNumber,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case result.Failed:
			printWarning(out, "flight search failed, try again later")
		case len(result.Segments) == 0:
			fmt.Fprintln(out, "No flights found")
		default:
			for i, s := range result.Segments {
				fmt.Fprintf(out, "%2d. %s\n", i+1, segmentLine(s))
			}
		}
		return nil
	},
}

func init() {
	f := flightsSearchCmd.Flags()
	f.StringVar(&searchFrom, "from", "", "departure airport (IATA)")
	f.StringVar(&searchTo, "to", "", "arrival airport (IATA)")
	f.StringVar(&searchDate, "date", "", "departure date, YYYY-MM-DD")
	f.StringVar(&searchNumber, "flight", "", "flight number filter, e.g. KE123")
	_ = flightsSearchCmd.MarkFlagRequired("from")
	_ = flightsSearchCmd.MarkFlagRequired("to")
	_ = flightsSearchCmd.MarkFlagRequired("date")
	flightsCmd.AddCommand(flightsSearchCmd)
}
