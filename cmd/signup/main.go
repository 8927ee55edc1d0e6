package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/config"
	"github.com/itsHabib/rsvpboard/internal/notify"
	"github.com/itsHabib/rsvpboard/internal/schedule"
)

var (
	configFile  = flag.String("f", "etc/rsvpboard.yaml", "the config file")
	requestFile = flag.String("requests", "cmd/signup/requests.json", "json list of classes to sign up for")
	list        = flag.Bool("list", false, "print the schedule and exit")
)

func main() {
	flag.Parse()

	c, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}
	if err := c.SetUp(); err != nil {
		log.Fatalf("unable to set up logging: %v", err)
	}
	ctx := context.Background()
	if err := c.ResolveSecrets(ctx); err != nil {
		log.Fatalf("unable to resolve secrets: %v", err)
	}
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	gymService, err := c.NewGymService()
	if err != nil {
		log.Fatalf("unable to create gym service: %v", err)
	}
	b, err := board.New(gymService, board.Options{
		Days:               c.Gym.Days,
		TolerateTaskErrors: c.Gym.TolerateTaskErrors,
	})
	if err != nil {
		log.Fatalf("unable to create board: %v", err)
	}
	notifier, err := c.Notifier()
	if err != nil {
		log.Fatalf("unable to create notifier: %v", err)
	}

	if err := b.Load(ctx); err != nil {
		log.Fatalf("unable to load schedule: %v", err)
	}

	if *list {
		printSchedule(b)
		return
	}

	// get requests file
	requests, err := readRequests(*requestFile)
	if err != nil {
		log.Fatalf("unable to read requests: %v", err)
	}
	if len(requests) == 0 {
		fmt.Printf("no requests to process\n")
		return
	}
	fmt.Printf("loaded %d requests\n", len(requests))

	if failed := signUpAll(ctx, b, notifier, requests, os.Stdout); failed > 0 {
		os.Exit(1)
	}
}

// signUpAll signs up for every class matching requests, skipping classes the
// member is already signed up for and classes without a scheduled time. It
// returns the number of requests or sign-ups that failed.
func signUpAll(ctx context.Context, b *board.Board, notifier notify.Notifier, requests []schedule.Request, out io.Writer) int {
	var failed int
	days := b.Days()
	tasks := b.Tasks()
	for _, r := range requests {
		matches := schedule.Match(days, r)
		if len(matches) == 0 {
			fmt.Fprintf(out, "no class found for request: %s\n", r)
			failed++
			continue
		}
		for _, class := range matches {
			title := strings.Replace(class.Title, "\n", " ", -1)
			if board.IsSignedUp(tasks, class.ID) {
				fmt.Fprintf(out, "already signed up: %s, %s %s\n", title, class.Date, class.Hour)
				continue
			}
			if !class.Bookable() {
				fmt.Fprintf(out, "class has no scheduled time yet, skipping: %s, %s %s\n", title, class.Date, class.Hour)
				continue
			}

			event := notify.Event{Kind: notify.SIGNED_UP, ClassID: class.ID, Title: class.Title, ScheduledTime: class.Schedule()}
			if err := b.SignUp(ctx, class.ID, class.Schedule()); err != nil {
				fmt.Fprintf(out, "failed to sign up for %s: %v\n", title, err)
				event.Kind = notify.SIGN_UP_FAILED
				event.Err = err
				failed++
			} else {
				fmt.Fprintf(out, "signed up: %s, %s %s\n", title, class.Date, class.Hour)
			}
			if err := notifier.Notify(ctx, event); err != nil {
				fmt.Fprintf(out, "unable to notify: %v\n", err)
			}
		}
	}

	return failed
}

func readRequests(path string) ([]schedule.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open requests file: %w", err)
	}
	defer f.Close()

	var requests []schedule.Request
	if err := json.NewDecoder(f).Decode(&requests); err != nil {
		return nil, fmt.Errorf("unable to decode requests file: %w", err)
	}

	return requests, nil
}

func printSchedule(b *board.Board) {
	tasks := b.Tasks()
	for _, day := range b.Days() {
		fmt.Println(day.Date)
		for _, class := range day.Classes {
			mark := " "
			if board.IsSignedUp(tasks, class.ID) {
				mark = "*"
			}
			fmt.Printf("  %s %s  %-40s %3s spots  [%s]\n", mark, class.Hour, strings.Replace(class.Title, "\n", " ", -1), class.AvailabilityNumber, class.ID)
		}
	}
}
