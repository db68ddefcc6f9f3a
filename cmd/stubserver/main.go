package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"socialclient/models"
	"socialclient/stub"
)

func main() {
	var addr string
	var posts int
	flag.StringVar(&addr, "addr", ":8080", "Address to listen on")
	flag.IntVar(&posts, "posts", 50, "Number of fake posts to seed")
	flag.Parse()

	s := stub.NewServer()
	s.SeedBubbles(
		models.Bubble{ID: 1, Name: "Neighborhood"},
		models.Bubble{ID: 2, Name: "Climbing crew"},
		models.Bubble{ID: 3, Name: "Board games"},
	)
	s.SeedRandomPosts(posts, "music", "sports", "games")

	logrus.Infof("stub API listening on %s with %d seeded posts", addr, posts)
	if err := s.Engine().Run(addr); err != nil {
		logrus.Fatalf("stub server: %v", err)
	}
}
