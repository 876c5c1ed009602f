// Command ews-dump decodes Exchange Web Services responses and fetches
// objects from an EWS server.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/emersion/go-ews"
	"github.com/emersion/go-ews/calendar"
	"github.com/emersion/go-ews/contacts"
)

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err != nil {
		ews.Logger.Fatal().Err(err).Msg("")
	}
}

type appContext struct {
	out io.Writer
	cfg *Config
}

func newApp(out io.Writer) *cli.App {
	ctx := &appContext{out: out}

	return &cli.App{
		Name:  "ews-dump",
		Usage: "decode and fetch Exchange Web Services objects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath(),
				Usage:   "path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level",
			},
		},
		Before: ctx.setup,
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "decode the service objects of an EWS response",
				ArgsUsage: "<file|->",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "container", Value: "Items", Usage: "local name of the container element"},
					&cli.StringFlag{Name: "namespace", Value: "m", Usage: "namespace of the container element (m or t)"},
				},
				Action: ctx.decode,
			},
			{
				Name:      "export",
				Usage:     "convert calendar items to iCalendar or contacts to vCard",
				ArgsUsage: "<file|->",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "container", Value: "Items", Usage: "local name of the container element"},
					&cli.StringFlag{Name: "namespace", Value: "m", Usage: "namespace of the container element (m or t)"},
					&cli.BoolFlag{Name: "ics", Usage: "export calendar items"},
					&cli.BoolFlag{Name: "vcf", Usage: "export contacts"},
					&cli.StringFlag{Name: "start", Usage: "only export events ending after this RFC 3339 time"},
					&cli.StringFlag{Name: "end", Usage: "only export events starting before this RFC 3339 time"},
					&cli.StringSliceFlag{Name: "match", Usage: "only export cards matching FIELD=text or FIELD~text"},
				},
				Action: ctx.export,
			},
			{
				Name:  "find",
				Usage: "list the items of a folder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Value: ews.FolderInbox, Usage: "distinguished folder name"},
					&cli.IntFlag{Name: "offset", Usage: "index of the first item"},
					&cli.IntFlag{Name: "max", Value: 50, Usage: "maximum number of items"},
				},
				Action: ctx.find,
			},
			{
				Name:      "availability",
				Usage:     "show the free/busy view of mailboxes",
				ArgsUsage: "<mailbox>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "start of the window, RFC 3339 (default: now)"},
					&cli.DurationFlag{Name: "duration", Value: 24 * time.Hour, Usage: "length of the window"},
				},
				Action: ctx.availability,
			},
		},
	}
}

func (ctx *appContext) setup(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := cfg.logLevel()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	ews.Logger = ews.Logger.Level(level)
	ctx.cfg = cfg
	return nil
}

func (ctx *appContext) readObjects(c *cli.Context) ([]ews.ServiceObject, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one input file")
	}
	ns, err := parseNamespace(c.String("namespace"))
	if err != nil {
		return nil, err
	}
	return decodeFile(c.Args().First(), c.String("container"), ns)
}

func (ctx *appContext) decode(c *cli.Context) error {
	objs, err := ctx.readObjects(c)
	if err != nil {
		return err
	}
	return dumpObjects(ctx.out, objs)
}

func (ctx *appContext) export(c *cli.Context) error {
	if c.Bool("ics") == c.Bool("vcf") {
		return fmt.Errorf("exactly one of --ics and --vcf is required")
	}
	objs, err := ctx.readObjects(c)
	if err != nil {
		return err
	}
	if c.Bool("ics") {
		return ctx.exportCalendar(c, objs)
	}
	return ctx.exportContacts(c, objs)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (ctx *appContext) exportCalendar(c *cli.Context, objs []ews.ServiceObject) error {
	start, err := parseTime(c.String("start"))
	if err != nil {
		return err
	}
	end, err := parseTime(c.String("end"))
	if err != nil {
		return err
	}

	var events []*ical.Event
	for _, obj := range objs {
		ci, ok := obj.(*ews.CalendarItem)
		if !ok {
			continue
		}
		ev, err := calendar.ToEvent(ci)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}
	events, err = calendar.Filter(events, start, end)
	if err != nil {
		return err
	}
	return ical.NewEncoder(ctx.out).Encode(calendar.NewCalendar(events...))
}

func (ctx *appContext) exportContacts(c *cli.Context, objs []ews.ServiceObject) error {
	var matches []contacts.TextMatch
	for _, s := range c.StringSlice("match") {
		m, err := contacts.ParseTextMatch(s)
		if err != nil {
			return err
		}
		matches = append(matches, m)
	}

	var cards []vcard.Card
	for _, obj := range objs {
		contact, ok := obj.(*ews.Contact)
		if !ok {
			continue
		}
		card, err := contacts.ToCard(contact)
		if err != nil {
			return err
		}
		cards = append(cards, card)
	}
	cards, err := contacts.Filter(cards, matches...)
	if err != nil {
		return err
	}

	enc := vcard.NewEncoder(ctx.out)
	for _, card := range cards {
		if err := enc.Encode(card); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *appContext) find(c *cli.Context) error {
	s, err := ctx.cfg.newService()
	if err != nil {
		return err
	}
	folder := ews.NewDistinguishedFolderID(c.String("folder"))
	result, err := s.FindItems(c.Context, folder, nil, &ews.FindItemsOptions{
		Offset:     c.Int("offset"),
		MaxEntries: c.Int("max"),
	})
	if err != nil {
		return err
	}

	objs := make([]ews.ServiceObject, 0, len(result.Items))
	for _, item := range result.Items {
		objs = append(objs, item)
	}
	if err := dumpObjects(ctx.out, objs); err != nil {
		return err
	}
	if result.MoreAvailable {
		ews.Logger.Info().Int("next_offset", result.NextOffset).Int("total", result.Total).Msg("more items available")
	}
	return nil
}

func (ctx *appContext) availability(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one mailbox")
	}
	start, err := parseTime(c.String("start"))
	if err != nil {
		return err
	}
	if start.IsZero() {
		start = time.Now()
	}
	end := start.Add(c.Duration("duration"))

	s, err := ctx.cfg.newService()
	if err != nil {
		return err
	}
	mailboxes := c.Args().Slice()
	l, err := s.GetUserAvailability(c.Context, mailboxes, start, end)
	if err != nil {
		return err
	}

	var out []interface{}
	for i, av := range l {
		mailbox := ""
		if i < len(mailboxes) {
			mailbox = mailboxes[i]
		}
		out = append(out, availabilityYAML(mailbox, av))
	}
	return writeYAML(ctx.out, out)
}
