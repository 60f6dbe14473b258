package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo profiles,
// likes, matches and a few conversations.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords.
//  3. Seeds one-directional likes plus a handful of mutual pairs; each
//     mutual pair gets consistent Like, PairState and Match rows.
//  4. Opens a short conversation in the first few matches and mirrors
//     the newest message into the match summary.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"messages", "matches", "pair_states", "likes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cities := []string{"Berlin", "Lisbon", "Austin", "Osaka", "Oslo"}
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender, interested := "male", "female"
		if i > 10 {
			gender, interested = "female", "male"
		}
		u := User{
			ID:           fmt.Sprintf("seed-user-%02d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Name:         fmt.Sprintf("User %d", i),
			Age:          18 + r.Intn(30),
			Bio:          "Hello from the seed data.",
			Photos:       []string{fmt.Sprintf("https://pics.example.com/%d/main.jpg", i)},
			Gender:       gender,
			InterestedIn: interested,
			Location:     cities[r.Intn(len(cities))],
			Verified:     i%4 == 0,
			Premium:      i%7 == 0,
		}
		if u.Premium {
			u.PremiumType = "gold"
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, u)
	}
	log.Println("Seeded 20 users.")

	likeEdge := func(from, to User) error {
		like := Like{FromUserID: from.ID, ToUserID: to.ID}
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	}

	// one-directional likes: men 4..10 like random women
	for i := 3; i < 10; i++ {
		target := users[10+r.Intn(10)]
		if err := likeEdge(users[i], target); err != nil {
			return fmt.Errorf("failed to seed like: %w", err)
		}
		pair := pairFor(users[i], target, PairLiked)
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pair).Error; err != nil {
			return fmt.Errorf("failed to seed pair state: %w", err)
		}
	}

	// mutual pairs: user i <-> user 10+i for the first three couples
	matches := make([]Match, 0, 3)
	for i := 0; i < 3; i++ {
		a, b := users[i], users[10+i]
		if err := likeEdge(a, b); err != nil {
			return err
		}
		if err := likeEdge(b, a); err != nil {
			return err
		}
		pair := pairFor(a, b, PairMatched)
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pair).Error; err != nil {
			return err
		}
		m := Match{
			ID:         uuid.NewString(),
			User1ID:    a.ID,
			User2ID:    b.ID,
			User1Name:  a.Name,
			User2Name:  b.Name,
			User1Photo: a.Photos[0],
			User2Photo: b.Photos[0],
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to seed match: %w", err)
		}
		matches = append(matches, m)
	}
	log.Printf("Seeded %d matches.", len(matches))

	// short conversations in each match
	lines := []string{"hey!", "hi, how are you?", "pretty good, you?"}
	for _, m := range matches {
		var last Message
		for j, text := range lines {
			sender := m.User1ID
			if j%2 == 1 {
				sender = m.User2ID
			}
			last = Message{
				ID:        uuid.NewString(),
				MatchID:   m.ID,
				SenderID:  sender,
				Text:      text,
				Timestamp: time.Now().Add(time.Duration(j-len(lines)) * time.Minute),
			}
			if err := db.Create(&last).Error; err != nil {
				return fmt.Errorf("failed to seed message: %w", err)
			}
		}
		err := db.Model(&Match{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"last_message":      last.Text,
			"last_message_time": last.Timestamp,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update match summary: %w", err)
		}
	}

	return nil
}

// pairFor builds the canonical pair-state row for two users. The first
// argument is treated as the initiator.
func pairFor(a, b User, status string) PairState {
	lo, hi := a.ID, b.ID
	if hi < lo {
		lo, hi = hi, lo
	}
	return PairState{UserLoID: lo, UserHiID: hi, Status: status, InitiatorID: a.ID}
}
