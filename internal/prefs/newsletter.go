package prefs

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsdesk/newsdesk/internal/news"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	ErrInvalidEmail = errors.New("please enter a valid email address")
)

// Subscription is one newsletter sign-up.
type Subscription struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Categories    []string  `json:"categories"`
	WeatherAlerts bool      `json:"weather_alerts"`
	SubscribedAt  time.Time `json:"subscribed_at"`
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Subscribe validates and stores a subscription as the current newsletter
// preference and appends it to the history. Unknown categories are dropped;
// an empty list means general.
func (p *Prefs) Subscribe(email string, categories []string, weatherAlerts bool) (Subscription, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return Subscription{}, ErrInvalidEmail
	}

	var cats []string
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if news.ValidCategory(c) {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		cats = []string{news.DefaultCategory}
	}

	sub := Subscription{
		ID:            uuid.NewString(),
		Email:         email,
		Categories:    cats,
		WeatherAlerts: weatherAlerts,
		SubscribedAt:  p.now().UTC(),
	}
	if err := p.set(KeyNewsletter, sub); err != nil {
		return Subscription{}, err
	}
	history := append(p.Subscriptions(), sub)
	if err := p.set(KeySubscriptions, history); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// Newsletter returns the current subscription, if any.
func (p *Prefs) Newsletter() (Subscription, bool) {
	var s Subscription
	ok := p.store.Get(KeyNewsletter, &s)
	return s, ok
}

func (p *Prefs) Subscriptions() []Subscription {
	var subs []Subscription
	p.store.Get(KeySubscriptions, &subs)
	return subs
}
