// Command planner is the group availability planner client: it resolves the
// visiting identity for an event, renders the weekly grids as text, and
// applies availability intents back through the core.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/example/group-planner/internal/availability"
	"github.com/example/group-planner/internal/config"
	"github.com/example/group-planner/internal/event"
	"github.com/example/group-planner/internal/identifier"
	"github.com/example/group-planner/internal/logging"
	"github.com/example/group-planner/internal/session"
	"github.com/example/group-planner/internal/shareurl"
	"github.com/example/group-planner/internal/storage/memory"
	"github.com/example/group-planner/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "planner:", err)
		os.Exit(1)
	}
}

func run() error {
	link := flag.String("url", "", "share link to open (event id and optional guest flag)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))
	ctx := logging.ContextWithLogger(context.Background(), logger)

	durable, err := sqlite.Open(cfg.StorageDSN)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := durable.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()
	if err := durable.Migrate(ctx); err != nil {
		return err
	}

	ui := &terminalPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	events := event.NewStoreWithLogger(durable, identifier.NewID, identifier.NewAdminCode, nil, logger)
	resolver := session.NewResolverWithLogger(events, durable, memory.New(), ui, identifier.NewID, logger)
	model := availability.NewModelWithLogger(events, logger)

	sess, err := resolver.Resolve(ctx, shareurl.Parse(*link))
	if err != nil {
		return err
	}

	a := &app{
		ctx:      ctx,
		cfg:      cfg,
		ui:       ui,
		resolver: resolver,
		model:    model,
		sess:     sess,
		viewedID: sess.CurrentUserID,
	}
	return a.loop()
}

// terminalPrompter implements session.UserPrompter over stdin/stdout.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *terminalPrompter) PromptName(message, fallback string) string {
	fmt.Fprintf(p.out, "%s [%s]: ", message, fallback)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return fallback
	}
	if name := strings.TrimSpace(line); name != "" {
		return name
	}
	return fallback
}

func (p *terminalPrompter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (p *terminalPrompter) Notify(message string) {
	fmt.Fprintln(p.out, "note:", message)
}

type app struct {
	ctx      context.Context
	cfg      config.Config
	ui       *terminalPrompter
	resolver *session.Resolver
	model    *availability.Model
	sess     *session.Session
	viewedID string
}

func (a *app) loop() error {
	ev := a.sess.Event
	fmt.Printf("Event %q, you are %s\n", ev.Name, a.describeSelf())
	if a.sess.Created {
		fmt.Printf("Admin code: %s (share it with no one; unlock admin tools with it)\n", ev.AdminCode)
		fmt.Println("Event address:", shareurl.Canonical(a.cfg.BaseURL, ev.ID))
	}
	fmt.Println(`Type "help" for commands.`)

	for {
		fmt.Print("> ")
		line, err := a.ui.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if done := a.dispatch(fields[0], fields[1:]); done {
			return nil
		}
	}
}

func (a *app) dispatch(command string, args []string) bool {
	switch command {
	case "help":
		a.printHelp()
	case "grid":
		a.printGrid()
	case "common":
		a.printCommon()
	case "participants":
		a.printParticipants()
	case "view":
		a.view(args)
	case "toggle":
		a.toggle(args)
	case "clear":
		a.clear()
	case "unlock":
		a.unlock(args)
	case "logout":
		a.logout()
	case "share":
		a.share()
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q; type \"help\"\n", command)
	}
	return false
}

func (a *app) printHelp() {
	fmt.Print(`commands:
  grid                 show the viewed participant's weekly grid
  common               show group overlap per slot
  participants         list participants (join order)
  view <n>             view participant n's grid
  toggle <day> <hour>  flip your availability (day 0-6 Monday-first, hour 0-23)
  clear                clear the viewed participant's schedule
  unlock <code>        unlock admin tools with the event's admin code
  logout               lock admin tools on this device
  share                copy the guest share link
  quit                 leave
`)
}

func (a *app) describeSelf() string {
	p, _ := a.sess.CurrentParticipant()
	role := "guest"
	if a.sess.IsAdminParticipant() {
		role = "admin (locked)"
		if a.sess.AdminUnlocked {
			role = "admin (unlocked)"
		}
	}
	return fmt.Sprintf("%s, %s", p.Name, role)
}

func (a *app) printParticipants() {
	ev := a.sess.Event
	for i, p := range ev.Participants {
		marker := " "
		if p.ID == a.viewedID {
			marker = "*"
		}
		label := ""
		if p.ID == ev.AdminParticipantID {
			label = " [admin]"
		}
		fmt.Printf("%s %d. %s%s: %d slots\n", marker, i+1, p.Name, label, a.model.SlotCount(ev, p.ID))
	}
}

func (a *app) view(args []string) {
	ev := a.sess.Event
	if len(args) != 1 {
		fmt.Println("usage: view <participant number>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(ev.Participants) {
		fmt.Println("no such participant; see \"participants\"")
		return
	}
	target := ev.Participants[n-1]
	// Previewing others is an admin affordance; regular visitors keep to
	// their own grid.
	if target.ID != a.sess.CurrentUserID && !a.sess.AdminUnlocked {
		fmt.Println("unlock admin tools to view other schedules")
		return
	}
	a.viewedID = target.ID
	a.printGrid()
}

func (a *app) printGrid() {
	ev := a.sess.Event
	p, ok := ev.Participant(a.viewedID)
	if !ok {
		a.viewedID = a.sess.CurrentUserID
		p, _ = ev.Participant(a.viewedID)
	}
	editable := ""
	if a.viewedID == a.sess.CurrentUserID {
		editable = " (yours; toggle <day> <hour> to edit)"
	}
	fmt.Printf("%s's availability%s\n", p.Name, editable)
	printHourHeader()
	for day := 0; day < availability.Days; day++ {
		fmt.Printf("%-9s ", availability.DayNames[day])
		for hour := 0; hour < availability.HoursPerDay; hour++ {
			cell := " ."
			if a.model.IsAvailable(ev, a.viewedID, day, hour) {
				cell = " #"
			}
			fmt.Print(cell)
		}
		fmt.Println()
	}
}

func (a *app) printCommon() {
	ev := a.sess.Event
	fmt.Printf("group overlap (%d participants; * = everyone)\n", len(ev.Participants))
	printHourHeader()
	for day := 0; day < availability.Days; day++ {
		fmt.Printf("%-9s ", availability.DayNames[day])
		for hour := 0; hour < availability.HoursPerDay; hour++ {
			count := len(a.model.AvailableParticipants(ev, day, hour))
			switch {
			case count == 0:
				fmt.Print(" .")
			case a.model.EveryoneAvailable(ev, day, hour):
				fmt.Print(" *")
			default:
				fmt.Printf("%2d", count)
			}
		}
		fmt.Println()
	}
}

func printHourHeader() {
	fmt.Printf("%-9s ", "")
	for hour := 0; hour < availability.HoursPerDay; hour++ {
		fmt.Printf("%2d", hour)
	}
	fmt.Println()
}

func (a *app) toggle(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: toggle <day 0-6> <hour 0-23>")
		return
	}
	day, errDay := strconv.Atoi(args[0])
	hour, errHour := strconv.Atoi(args[1])
	if errDay != nil || errHour != nil {
		fmt.Println("usage: toggle <day 0-6> <hour 0-23>")
		return
	}

	marked, err := a.model.Toggle(a.ctx, a.sess.Event, a.sess.CurrentUserID, day, hour)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidSlot) {
			fmt.Println("that slot is outside the weekly grid")
			return
		}
		fmt.Println("could not save:", err)
		return
	}
	state := "available"
	if !marked {
		state = "unavailable"
	}
	fmt.Printf("%s %d:00 is now %s\n", availability.DayNames[day], hour, state)
}

func (a *app) clear() {
	ev := a.sess.Event
	target, ok := ev.Participant(a.viewedID)
	if !ok {
		return
	}
	if !a.sess.CanClear(target.ID) {
		fmt.Println("unlock admin tools to clear other schedules")
		return
	}

	question := fmt.Sprintf("Delete %s's schedule?", target.Name)
	if target.ID == a.sess.CurrentUserID {
		question = "Are you sure you want to clear your schedule?"
	}
	if !a.ui.Confirm(question) {
		return
	}
	if err := a.model.Clear(a.ctx, ev, target.ID); err != nil {
		fmt.Println("could not save:", err)
		return
	}
	fmt.Println("schedule cleared")
}

func (a *app) unlock(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: unlock <code>")
		return
	}
	err := a.resolver.UnlockAdmin(a.ctx, a.sess, args[0])
	switch {
	case errors.Is(err, session.ErrInvalidAdminCode):
		fmt.Println("that code does not match; try again")
	case errors.Is(err, session.ErrNotAdmin):
		fmt.Println("only the event admin can unlock admin tools")
	case err != nil:
		fmt.Println("could not unlock:", err)
	default:
		fmt.Println("admin tools unlocked")
	}
}

func (a *app) logout() {
	if err := a.resolver.Logout(a.ctx, a.sess); err != nil {
		fmt.Println("could not log out:", err)
		return
	}
	fmt.Println("admin tools locked")
}

func (a *app) share() {
	link := shareurl.GuestLink(a.cfg.BaseURL, a.sess.Event.ID)
	if err := clipboard.WriteAll(link); err != nil {
		// No clipboard available; hand the link over for manual copy.
		fmt.Println("copy this link:", link)
		return
	}
	fmt.Println("share link copied:", link)
}
