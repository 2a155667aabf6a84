package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/peterbourgon/ff"
	"github.com/sirupsen/logrus"

	"github.com/fleetcmd/fleet-registry/internal/config"
	"github.com/fleetcmd/fleet-registry/internal/registry"
	"github.com/fleetcmd/fleet-registry/internal/report"
	"github.com/fleetcmd/fleet-registry/internal/types"
)

const launchDateLayout = "2006-01-02"

func main() {
	if err := runFleet(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logrus.WithError(err).Fatal("fleet console failed")
	}
}

// runFleet contains the main application logic and can be tested
func runFleet(args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("fleet", flag.ContinueOnError)
	var (
		dataFile = flags.String("data", cfg.DataFile, "path to the fleet data file")
		debug    = flags.Bool("debug", false, "enable debug logging")
	)
	if err := ff.Parse(flags, args, ff.WithEnvVarPrefix("FLEET")); err != nil {
		return err
	}

	logrus.SetLevel(cfg.LogLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	reg := registry.New(registry.SystemClock())
	if err := reg.Load(*dataFile); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			logrus.Info("no saved fleet data found, starting with an empty fleet")
		} else {
			logrus.WithError(err).Warn("could not load saved fleet data, starting with an empty fleet")
		}
	} else {
		logrus.Infof("loaded %d boats from %s", reg.Count(), *dataFile)
	}

	c := &console{reg: reg, dataFile: *dataFile}
	c.run(in, out)
	return nil
}

// console maps user commands onto registry operations and renders their
// results, including typed failures, as user-facing messages.
type console struct {
	reg      *registry.Registry
	dataFile string
}

func (c *console) run(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Fleet Command console. Type help for commands.")
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		response, quit := c.handle(scanner.Text())
		if response != "" {
			fmt.Fprintln(out, response)
		}
		if quit {
			return
		}
		fmt.Fprint(out, "> ")
	}
}

// handle executes a single command line and returns the rendered response
// and whether the console should exit
func (c *console) handle(line string) (string, bool) {
	args := splitFields(line)
	if len(args) == 0 {
		return "", false
	}
	cmd := strings.ToLower(args[0])
	args = args[1:]

	switch cmd {
	case "quit", "exit":
		return "Goodbye.", true
	case "help":
		return helpText, false
	case "add":
		return c.add(args), false
	case "update":
		return c.update(args), false
	case "remove":
		return c.remove(args), false
	case "position":
		return c.position(args), false
	case "arrive":
		return c.arrive(args), false
	case "history":
		return c.history(args), false
	case "show":
		return c.show(args), false
	case "list":
		return c.list(), false
	case "filter":
		return c.filter(args), false
	case "sort":
		return c.sort(args), false
	case "report":
		return report.Build(c.reg.ListBoats()).String(), false
	case "events":
		return c.events(), false
	case "save":
		return c.save(args), false
	case "load":
		return c.load(args), false
	}
	return fmt.Sprintf("Unknown command %q. Type help for commands.", cmd), false
}

const helpText = `Commands:
  add <id> <name> <home_port> <flag>        register a new boat
  update <id> [name=] [port=] [flag=] [launched=YYYY-MM-DD]
  remove <id>                               remove a boat and its history
  position <id> <latitude> <longitude>      record the boat's position
  arrive <id> <port> [note...]              record an arrival
  history <id>                              show a boat's position history
  show <id>                                 show one boat
  list                                      list all boats
  filter [name=] [port=] [flag=]            filter boats (substring match)
  sort [name|id|home_port|flag]             list boats sorted by key
  report                                    fleet status report
  events                                    show the fleet journal
  save [path]                               write fleet data to disk
  load [path]                               replace fleet data from disk
  quit                                      leave the console

Quote multi-word values: add B1 "HMS Albion" London UK`

func (c *console) add(args []string) string {
	if len(args) != 4 {
		return "Usage: add <id> <name> <home_port> <flag>"
	}
	boat, err := c.reg.AddBoat(args[0], args[1], args[2], args[3])
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s successfully added to fleet.", boat.Name)
}

func (c *console) update(args []string) string {
	if len(args) < 2 {
		return "Usage: update <id> [name=] [port=] [flag=] [launched=YYYY-MM-DD]"
	}
	assignments, err := parseAssignments(args[1:])
	if err != nil {
		return err.Error()
	}

	var update registry.BoatUpdate
	for key, value := range assignments {
		switch key {
		case "name":
			v := value
			update.Name = &v
		case "port":
			v := value
			update.HomePort = &v
		case "flag":
			v := value
			update.Flag = &v
		case "launched":
			launched, err := time.Parse(launchDateLayout, value)
			if err != nil {
				return fmt.Sprintf("Launch date must look like %s.", launchDateLayout)
			}
			update.LaunchDate = &launched
		default:
			return fmt.Sprintf("Unknown field %q. Use name, port, flag or launched.", key)
		}
	}

	boat, err := c.reg.UpdateBoat(args[0], update)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s updated.", boat.Name)
}

func (c *console) remove(args []string) string {
	if len(args) != 1 {
		return "Usage: remove <id>"
	}
	if err := c.reg.RemoveBoat(args[0]); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Ship %s successfully removed from fleet.", args[0])
}

func (c *console) position(args []string) string {
	if len(args) != 3 {
		return "Usage: position <id> <latitude> <longitude>"
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Sprintf("Latitude %q is not a number.", args[1])
	}
	lon, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Sprintf("Longitude %q is not a number.", args[2])
	}

	record, err := c.reg.RecordPosition(args[0], lat, lon, time.Time{})
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Position logged: %.4f, %.4f at %s.",
		record.Latitude, record.Longitude, record.Timestamp.Format(time.RFC3339))
}

func (c *console) arrive(args []string) string {
	if len(args) < 2 {
		return "Usage: arrive <id> <port> [note...]"
	}
	note := strings.Join(args[2:], " ")
	entry, err := c.reg.RecordArrival(args[0], args[1], time.Time{}, note)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Arrival recorded at %s.", entry.Port)
}

func (c *console) history(args []string) string {
	if len(args) != 1 {
		return "Usage: history <id>"
	}
	boat, err := c.reg.GetBoat(args[0])
	if err != nil {
		return renderError(err)
	}
	if len(boat.Positions) == 0 {
		return fmt.Sprintf("No position logs recorded for %s.", boat.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position history for %s:\n", boat.Name)
	for _, p := range boat.Positions {
		fmt.Fprintf(&b, "  [%s] %.4f, %.4f\n",
			p.Timestamp.Format(time.RFC3339), p.Latitude, p.Longitude)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *console) show(args []string) string {
	if len(args) != 1 {
		return "Usage: show <id>"
	}
	boat, err := c.reg.GetBoat(args[0])
	if err != nil {
		return renderError(err)
	}
	return formatBoat(boat)
}

func (c *console) list() string {
	return formatBoats(c.reg.ListBoats(), "The fleet is empty.")
}

func (c *console) filter(args []string) string {
	assignments, err := parseAssignments(args)
	if err != nil {
		return err.Error()
	}

	var filter registry.Filter
	for key, value := range assignments {
		switch key {
		case "name":
			filter.Name = value
		case "port":
			filter.HomePort = value
		case "flag":
			filter.Flag = value
		default:
			return fmt.Sprintf("Unknown field %q. Use name, port or flag.", key)
		}
	}
	return formatBoats(c.reg.FilterBoats(filter), "No results found.")
}

func (c *console) sort(args []string) string {
	key := registry.SortByName
	if len(args) > 0 {
		key = args[0]
	}
	sorted, err := registry.SortBoats(c.reg.ListBoats(), key)
	if err != nil {
		return renderError(err)
	}
	return formatBoats(sorted, "The fleet is empty.")
}

func (c *console) events() string {
	events := c.reg.Events()
	if len(events) == 0 {
		return "No fleet events recorded yet."
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "[%s] %s\n", e.Timestamp.Format(time.RFC3339), e.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *console) save(args []string) string {
	path := c.dataFile
	if len(args) > 0 {
		path = args[0]
	}
	if err := c.reg.Save(path); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Fleet data saved to %s.", path)
}

func (c *console) load(args []string) string {
	path := c.dataFile
	if len(args) > 0 {
		path = args[0]
	}
	if err := c.reg.Load(path); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Loaded %d boats from %s.", c.reg.Count(), path)
}

// renderError translates the registry's typed failures into user-facing
// messages. Schema violations are matched before the general persistence
// case so the more specific message wins.
func renderError(err error) string {
	var (
		invalid   *types.InvalidInputError
		notFound  *types.NotFoundError
		duplicate *types.DuplicateIDError
		schema    *types.SchemaError
		persist   *types.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		return "Invalid input: " + invalid.Error() + "."
	case errors.As(err, &notFound):
		return fmt.Sprintf("Ship %q not found in fleet.", notFound.ID)
	case errors.As(err, &duplicate):
		return fmt.Sprintf("Ship id %q is already registered.", duplicate.ID)
	case errors.As(err, &schema):
		return "Saved fleet data is not usable: " + schema.Error() + "."
	case errors.As(err, &persist):
		return "Storage failure: " + persist.Error() + "."
	}
	return err.Error()
}

func formatBoat(b *types.Boat) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ship Name: %s (id %s)\n", b.Name, b.ID)
	if b.LaunchDate != nil {
		fmt.Fprintf(&sb, "Launch Date: %s\n", b.LaunchDate.Format(launchDateLayout))
	}
	fmt.Fprintf(&sb, "Home Port: %s\n", b.HomePort)
	fmt.Fprintf(&sb, "Flag: %s\n", b.Flag)
	if len(b.Positions) > 0 {
		last := b.Positions[len(b.Positions)-1]
		fmt.Fprintf(&sb, "Current Position: %.4f, %.4f", last.Latitude, last.Longitude)
	} else {
		sb.WriteString("Current Position: Unknown")
	}
	return sb.String()
}

func formatBoats(boats []*types.Boat, empty string) string {
	if len(boats) == 0 {
		return empty
	}
	blocks := make([]string, 0, len(boats))
	for _, b := range boats {
		blocks = append(blocks, formatBoat(b))
	}
	return strings.Join(blocks, "\n\n")
}

// splitFields splits a command line into fields, keeping double-quoted
// runs together so names and ports may contain spaces
func splitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			fields = append(fields, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case unicode.IsSpace(r) && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return fields
}

// parseAssignments parses key=value arguments into a map
func parseAssignments(args []string) (map[string]string, error) {
	assignments := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		assignments[key] = value
	}
	return assignments, nil
}
