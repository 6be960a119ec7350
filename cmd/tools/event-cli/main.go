// event-cli читает события игры из стрима NATS JetStream.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/breaknblocks/internal/eventbus"
)

const (
	defaultURL = "nats://127.0.0.1:4222"
	timeFormat = "15:04:05"
)

func main() {
	var (
		url        = flag.String("url", defaultURL, "NATS server URL")
		stream     = flag.String("stream", eventbus.DefaultStream, "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		since      = flag.String("since", "", "Replay events newer than duration (e.g. 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events (tail)")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		idle       = flag.Duration("idle", 2*time.Second, "Stop after no events for this long")
	)
	flag.Parse()

	opts := Options{
		Types:  parseStringList(*eventTypes),
		Replay: *since != "",
		Limit:  *limit,
		Follow: *follow,
		Idle:   *idle,
	}
	if *since != "" {
		d, err := time.ParseDuration(*since)
		if err != nil {
			log.Fatalf("❌ Invalid since: %v", err)
		}
		opts.Since = time.Now().Add(-d)
	}

	bus, err := eventbus.NewJetStreamBus(*url, *stream, 0)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *command {
	case "tail":
		n, err := tail(ctx, bus, os.Stdout, opts)
		if err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}
		fmt.Printf("\n📊 Total events: %d\n", n)

	case "stats":
		opts.Replay = true
		opts.Follow = false
		opts.Limit = 0
		counts := make(map[string]int)
		_, err := consume(ctx, bus, opts, func(ev *eventbus.Envelope) {
			counts[ev.EventType]++
		})
		if err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
		printStats(os.Stdout, counts)

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

// Options - параметры чтения стрима
type Options struct {
	Types  []string
	Replay bool // читать стрим с начала
	Since  time.Time
	Limit  int // 0 без ограничения
	Follow bool
	Idle   time.Duration
}

// consume подписывается на шину и передаёт события fn в одной горутине.
// Без Follow чтение заканчивается после Idle без новых событий.
func consume(ctx context.Context, bus eventbus.EventBus, opts Options, fn func(*eventbus.Envelope)) (int, error) {
	events := make(chan *eventbus.Envelope, 256)
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: opts.Types, Replay: opts.Replay}, func(ctx context.Context, ev *eventbus.Envelope) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	idle := opts.Idle
	if idle <= 0 {
		idle = 2 * time.Second
	}
	timer := time.NewTimer(idle)
	defer timer.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return count, nil
			}
			return count, ctx.Err()

		case <-timer.C:
			if !opts.Follow {
				return count, nil
			}
			timer.Reset(idle)

		case ev := <-events:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(idle)

			if !opts.Since.IsZero() && ev.Timestamp.Before(opts.Since) {
				continue
			}
			fn(ev)
			count++
			if opts.Limit > 0 && count >= opts.Limit && !opts.Follow {
				return count, nil
			}
		}
	}
}

func tail(ctx context.Context, bus eventbus.EventBus, w io.Writer, opts Options) (int, error) {
	fmt.Fprintf(w, "🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)
	return consume(ctx, bus, opts, func(ev *eventbus.Envelope) {
		printEvent(w, ev)
	})
}

// printEvent выводит событие в читаемом формате
func printEvent(w io.Writer, ev *eventbus.Envelope) {
	fmt.Fprintf(w, "[%s] %s [%s] %s\n",
		ev.Timestamp.Local().Format(timeFormat),
		ev.Source,
		ev.EventType,
		ev.ID)

	switch ev.EventType {
	case eventbus.TypeBlockDestroyed:
		p, err := eventbus.Decode[eventbus.BlockDestroyedPayload](ev)
		if err != nil {
			fmt.Fprintf(w, "  ⚠️ %v\n", err)
			return
		}
		fmt.Fprintf(w, "  Block: %s at (%.0f,%.0f) depth %d", p.Kind, p.X, p.Y, p.Depth)
		if p.HasBonus {
			fmt.Fprint(w, " bonus")
		}
		if p.FromAbility {
			fmt.Fprint(w, " ability")
		}
		fmt.Fprintln(w)

	case eventbus.TypeCommand:
		p, err := eventbus.Decode[eventbus.CommandPayload](ev)
		if err != nil {
			fmt.Fprintf(w, "  ⚠️ %v\n", err)
			return
		}
		fmt.Fprintf(w, "  Command: %s", p.Command)
		if p.Name != "" {
			fmt.Fprintf(w, " %s", p.Name)
		}
		if p.Items > 0 || p.Earned > 0 {
			fmt.Fprintf(w, " items=%d earned=%d", p.Items, p.Earned)
		}
		if p.Remote != "" {
			fmt.Fprintf(w, " from %s", p.Remote)
		}
		fmt.Fprintln(w)
	}
}

func printStats(w io.Writer, counts map[string]int) {
	types := make([]string, 0, len(counts))
	total := 0
	for t, n := range counts {
		types = append(types, t)
		total += n
	}
	sort.Strings(types)

	fmt.Fprintln(w, "📊 Event statistics")
	fmt.Fprintf(w, "Total events: %d\n", total)
	fmt.Fprintln(w, "\nBy event type:")
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d events\n", t, counts[t])
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
