// Package reactions aggregates the quick reactions left on community questions.
package reactions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Type string

const (
	Thanks Type = "thanks"
	Same   Type = "same"
	Hug    Type = "hug"
)

// Row is one stored reaction.
type Row struct {
	ReactionType Type   `json:"reaction_type"`
	UserID       string `json:"user_id"`
}

type Counts struct {
	Thanks int `json:"thanks"`
	Same   int `json:"same"`
	Hug    int `json:"hug"`
}

type Summary struct {
	Counts        Counts          `json:"counts"`
	Badges        map[Type]string `json:"badges"`
	UserReactions []Type          `json:"userReactions"`
	Text          string          `json:"text"`
	Tooltips      map[Type]string `json:"tooltips"`
}

var tooltips = map[Type]string{
	Thanks: "Ευχαριστώ πολύ!",
	Same:   "Κι εγώ το έχω ζήσει..",
	Hug:    "Δεν είσαι μόνη 🤗",
}

// Aggregate counts the known reaction types and collects the ones left by
// userID. Unknown types are ignored.
func Aggregate(rows []Row, userID string) Summary {
	var counts Counts
	mine := map[Type]struct{}{}

	for _, row := range rows {
		switch row.ReactionType {
		case Thanks:
			counts.Thanks++
		case Same:
			counts.Same++
		case Hug:
			counts.Hug++
		default:
			continue
		}
		if userID != "" && row.UserID == userID {
			mine[row.ReactionType] = struct{}{}
		}
	}

	own := make([]Type, 0, len(mine))
	for t := range mine {
		own = append(own, t)
	}
	sort.Slice(own, func(i, j int) bool { return own[i] < own[j] })

	tips := make(map[Type]string, len(tooltips))
	for k, v := range tooltips {
		tips[k] = v
	}

	return Summary{
		Counts: counts,
		Badges: map[Type]string{
			Thanks: Badge(counts.Thanks),
			Same:   Badge(counts.Same),
			Hug:    Badge(counts.Hug),
		},
		UserReactions: own,
		Text:          Text(counts),
		Tooltips:      tips,
	}
}

// Text renders the counter line shown under a question. It is empty when
// nobody has shared the experience or sent a hug.
func Text(c Counts) string {
	parts := make([]string, 0, 2)
	switch {
	case c.Same == 1:
		parts = append(parts, "1 μαμά έχει περάσει το ίδιο")
	case c.Same > 1:
		parts = append(parts, fmt.Sprintf("%d μαμάδες έχουν περάσει το ίδιο", c.Same))
	}
	switch {
	case c.Hug == 1:
		parts = append(parts, "1 αγκαλιά")
	case c.Hug > 1:
		parts = append(parts, fmt.Sprintf("%d αγκαλιές", c.Hug))
	}
	return strings.Join(parts, " · ")
}

// Badge is the counter bubble text. Zero renders nothing and anything above
// nine renders as "9+".
func Badge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 9:
		return "9+"
	default:
		return strconv.Itoa(n)
	}
}
