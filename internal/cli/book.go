package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
	"github.com/pkordes/trip-planner/internal/wizard"
)

var (
	bookTrip   string
	bookFrom   string
	bookTo     string
	bookDepart string
	bookReturn string
)

// errAborted is returned when the traveler quits the wizard. Nothing is saved.
var errAborted = errors.New("booking cancelled")

var bookFlightCmd = &cobra.Command{
	Use:   "book-flight",
	Short: "Pick outbound and return flights and add them to a trip",
	Long: `book-flight walks through outbound search, outbound selection, return search,
return selection and review. At any prompt "back" steps back one screen and
"quit" leaves without saving. Confirming saves the booking and adds the
flight entries to the trip's itinerary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		tripID, err := uuid.Parse(bookTrip)
		if err != nil {
			return fmt.Errorf("--trip: %w", err)
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		flow := &bookingFlow{
			in:     bufio.NewScanner(cmd.InOrStdin()),
			out:    cmd.OutOrStdout(),
			search: a.flights.Search,
			from:   strings.ToUpper(bookFrom),
			to:     strings.ToUpper(bookTo),
			depart: bookDepart,
			ret:    bookReturn,
		}
		sel, err := flow.run(cmd.Context())
		if errors.Is(err, errAborted) {
			printWarning(flow.out, err.Error())
			return nil
		}
		if err != nil {
			return err
		}

		booking, added, err := a.flights.SaveBooking(cmd.Context(), sess, tripID, domain.FlightBooking{
			Outbound: sel.Outbound,
			Inbound:  sel.Inbound,
		})
		if err != nil {
			return err
		}
		printSuccess(flow.out, fmt.Sprintf("booking %s saved, %d itinerary entries added", booking.ID, added))
		return nil
	},
}

func init() {
	f := bookFlightCmd.Flags()
	f.StringVar(&bookTrip, "trip", "", "trip ID")
	f.StringVar(&bookFrom, "from", "", "home airport (IATA)")
	f.StringVar(&bookTo, "to", "", "destination airport (IATA)")
	f.StringVar(&bookDepart, "depart", "", "outbound date, YYYY-MM-DD")
	f.StringVar(&bookReturn, "return", "", "return date, YYYY-MM-DD; leave empty for one-way")
	for _, name := range []string{"trip", "from", "to", "depart"} {
		_ = bookFlightCmd.MarkFlagRequired(name)
	}
}

// bookingFlow drives a wizard.Wizard from line-based terminal input.
type bookingFlow struct {
	in     *bufio.Scanner
	out    io.Writer
	search func(ctx context.Context, q domain.FlightQuery) (service.SearchResult, error)

	from, to    string
	depart, ret string
	wiz         *wizard.Wizard
}

// run returns the confirmed selection, or errAborted when the traveler quits
// or input ends.
func (f *bookingFlow) run(ctx context.Context) (wizard.Selection, error) {
	f.wiz = wizard.New()
	for {
		var err error
		switch f.wiz.State() {
		case wizard.OutboundSearch:
			err = f.searchStep(ctx, "Outbound", f.from, f.to, f.depart)
		case wizard.InboundSearch:
			err = f.searchStep(ctx, "Return", f.to, f.from, f.ret)
		case wizard.OutboundSelect, wizard.InboundSelect:
			err = f.selectStep()
		case wizard.Review:
			var sel wizard.Selection
			var done bool
			sel, done, err = f.reviewStep()
			if done {
				return sel, err
			}
		}
		if err != nil {
			return wizard.Selection{}, err
		}
	}
}

func (f *bookingFlow) searchStep(ctx context.Context, leg, from, to, date string) error {
	printSection(f.out, fmt.Sprintf("%s flight %s → %s", leg, from, to))

	var commands []string
	if f.wiz.Can(wizard.EventSkipInbound) {
		commands = append(commands, `"skip" for one-way`)
	}
	if f.wiz.Can(wizard.EventBack) {
		commands = append(commands, `"back"`)
	}
	suffix := ""
	if len(commands) > 0 {
		suffix = ", " + strings.Join(commands, ", ")
	}

	if date == "" {
		date = f.ask("Date YYYY-MM-DD" + suffix)
		if done, err := f.command(date); done {
			return err
		}
	}
	number := f.ask("Flight number, enter for all" + suffix)
	if done, err := f.command(number); done {
		return err
	}

	result, err := f.search(ctx, domain.FlightQuery{Origin: from, Destination: to, Date: date, FlightNumber: number})
	if err != nil {
		printWarning(f.out, unwrapValidation(err))
		return nil
	}
	if result.Failed {
		printWarning(f.out, "flight search failed, try again")
		return nil
	}
	if len(result.Segments) == 0 {
		printWarning(f.out, "no flights found")
	}
	return f.wiz.Results(result.Segments)
}

// command handles the navigation words accepted at a search prompt. It
// reports whether input was one of them.
func (f *bookingFlow) command(input string) (bool, error) {
	switch strings.ToLower(input) {
	case "quit":
		return true, errAborted
	case "back":
		return true, f.step(f.wiz.Back())
	case "skip":
		return true, f.step(f.wiz.SkipInbound())
	}
	return false, nil
}

func (f *bookingFlow) selectStep() error {
	candidates := f.wiz.Candidates()
	for i, s := range candidates {
		fmt.Fprintf(f.out, "%2d. %s\n", i+1, segmentLine(s))
	}
	input := f.ask(fmt.Sprintf(`pick 1-%d, "search" again, "back"`, len(candidates)))
	switch strings.ToLower(input) {
	case "quit":
		return errAborted
	case "back":
		return f.step(f.wiz.Back())
	case "search":
		// Re-run the search step for this leg.
		return f.step(f.wiz.Back())
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(candidates) {
		printWarning(f.out, "enter a number from the list")
		return nil
	}
	return f.step(f.wiz.Select(n - 1))
}

func (f *bookingFlow) reviewStep() (wizard.Selection, bool, error) {
	printSection(f.out, "Review")
	sel := f.wiz.Pending()
	fmt.Fprintf(f.out, "Outbound: %s\n", segmentLine(sel.Outbound))
	if sel.Inbound != nil {
		fmt.Fprintf(f.out, "Return:   %s\n", segmentLine(*sel.Inbound))
	} else {
		fmt.Fprintln(f.out, "Return:   none")
	}

	switch strings.ToLower(f.ask(`"confirm" to save, "back" to change`)) {
	case "confirm", "y", "yes":
		sel, err := f.wiz.Confirm()
		return sel, true, err
	case "back":
		return wizard.Selection{}, false, f.step(f.wiz.Back())
	case "quit":
		return wizard.Selection{}, true, errAborted
	}
	return wizard.Selection{}, false, nil
}

// step reports an invalid transition to the traveler and keeps going.
func (f *bookingFlow) step(err error) error {
	if errors.Is(err, wizard.ErrInvalidTransition) {
		printWarning(f.out, "that is not available here")
		return nil
	}
	if err != nil {
		printWarning(f.out, err.Error())
	}
	return nil
}

// ask prints a prompt and returns the trimmed answer. End of input counts
// as "quit".
func (f *bookingFlow) ask(prompt string) string {
	_, _ = promptColor.Fprintf(f.out, "%s: ", prompt)
	if !f.in.Scan() {
		fmt.Fprintln(f.out)
		return "quit"
	}
	return strings.TrimSpace(f.in.Text())
}

func unwrapValidation(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
