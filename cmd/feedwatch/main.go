// feedwatch follows a feed through the sync layer against any backend that
// speaks the wire shapes (the stub server included): loads the first page,
// pages on demand, polls a chat thread and reacts to push events.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"socialclient/config"
	"socialclient/gateway"
	"socialclient/services"
	"socialclient/store"
)

func main() {
	var configPath, token, filter, metricsAddr string
	var threadID, viewerID int64
	flag.StringVar(&configPath, "config", "", "Path to the configuration file")
	flag.StringVar(&token, "token", "token-1", "Bearer credential")
	flag.StringVar(&filter, "filter", "", "Interest-category filter")
	flag.StringVar(&metricsAddr, "metrics", "", "Address for the /metrics endpoint (empty to disable)")
	flag.Int64Var(&threadID, "thread", 0, "Chat thread to poll (0 to disable)")
	flag.Int64Var(&viewerID, "viewer", 1, "Viewer user id")
	flag.Parse()

	conf := config.Default()
	if configPath != "" {
		if err := config.LoadConfig(configPath); err != nil {
			logrus.Fatalf("failed to load configuration: %v", err)
		}
		conf = config.AppConfig
	}
	if level, err := logrus.ParseLevel(conf.Logs.Level); err == nil {
		logrus.SetLevel(level)
	}

	if metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				logrus.Warnf("metrics endpoint: %v", err)
			}
		}()
	}

	creds := func() (string, error) { return token, nil }
	gw := gateway.NewClient(conf.Gateway.BaseURL, time.Duration(conf.Gateway.TimeoutMS)*time.Millisecond, creds)

	kv, err := store.OpenKV(conf.Cache, conf.Redis)
	if err != nil {
		logrus.Fatalf("failed to open snapshot cache: %v", err)
	}

	snap := store.NewSnapshot()
	notify := services.Notifier(func(e services.Event) {
		logrus.Debugf("signal: %s", e)
	})

	pages := services.NewPageManager(gw, snap, store.NewPersister(kv, "feed_snapshot"), notify, conf.Poller.PageSize)
	coord := services.NewCoordinator(gw, snap, notify)
	checker := services.NewFeedChecker(gw, snap, notify, conf.Poller.PageSize, coord.HasPending, pages.Filter)
	coord.SetPostCreatedHook(func() { go checker.Check(context.Background()) })

	if conf.Push.Enabled {
		listener := services.NewPushListener(conf.Push.URL, token, func() {
			go checker.Check(context.Background())
		})
		listener.Start()
		defer listener.Stop()
	}

	thread := store.NewThread()
	if threadID != 0 {
		poller := services.NewThreadPoller(gw, thread, threadID, time.Duration(conf.Poller.ThreadIntervalMS)*time.Millisecond, notify)
		poller.Start()
		defer poller.Stop()
	}

	ctx := context.Background()
	if err := pages.LoadFirstPage(ctx, filter); err != nil {
		logrus.Fatalf("initial load failed: %v", err)
	}
	if pages.Offline() {
		fmt.Println("== offline, showing cached data ==")
	}
	printFeed(snap)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Println("commands: n (next page), r (refresh check), l <id> (toggle like), s <text> (send message), p (print), q (quit)")
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-sigChan:
			fmt.Println("\nshutting down")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			runCommand(ctx, line, pages, coord, checker, snap, thread, threadID, viewerID)
		}
	}
}

func runCommand(ctx context.Context, line string, pages *services.PageManager, coord *services.Coordinator, checker *services.FeedChecker, snap *store.Snapshot, thread *store.Thread, threadID, viewerID int64) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "n":
		if err := pages.LoadNextPage(ctx); err != nil {
			fmt.Println("error:", err)
			return
		}
		printFeed(snap)
		if !pages.HasMore() {
			fmt.Println("== end of feed ==")
		}
	case "r":
		checker.Check(ctx)
		printFeed(snap)
	case "l":
		var id int64
		if _, err := fmt.Sscanf(arg, "%d", &id); err != nil {
			fmt.Println("usage: l <post id>")
			return
		}
		state, err := coord.ToggleLike(ctx, id)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("toggle:", state)
		printFeed(snap)
	case "s":
		if threadID == 0 {
			fmt.Println("no thread configured, start with -thread")
			return
		}
		if _, err := coord.SendMessage(ctx, thread, threadID, viewerID, arg); err != nil {
			fmt.Println("error:", err)
			return
		}
		printThread(thread, viewerID)
	case "p":
		printFeed(snap)
		if threadID != 0 {
			printThread(thread, viewerID)
		}
	case "q":
		os.Exit(0)
	default:
		fmt.Println("unknown command:", cmd)
	}
}

func printFeed(snap *store.Snapshot) {
	items := snap.Items()
	fmt.Printf("---- feed (%d items) ----\n", len(items))
	for _, item := range items {
		likedMark := " "
		if item.Liked {
			likedMark = "*"
		}
		content := item.Content
		if item.IsEvent() {
			content = fmt.Sprintf("[event: %s] %s", item.Event.Title, content)
		}
		fmt.Printf("%6d %s %-20s %3d likes  %s\n", item.ID, likedMark, item.AuthorName, item.LikeCount, content)
	}
}

func printThread(thread *store.Thread, viewerID int64) {
	msgs := thread.Messages()
	fmt.Printf("---- thread (%d messages) ----\n", len(msgs))
	for _, m := range msgs {
		who := m.SenderName()
		if m.Mine(viewerID) {
			who = "me"
		}
		suffix := ""
		if m.Provisional() {
			suffix = " (sending...)"
		}
		if link, ok := m.ActivityLink(); ok {
			fmt.Printf("[%s] shared an activity: %s (#%d)%s\n", who, link.Title, link.ActivityID, suffix)
			continue
		}
		fmt.Printf("[%s] %s%s\n", who, m.Text, suffix)
	}
}
