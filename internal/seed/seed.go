package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// File is the layout of a seed YAML document. Items and requests point at
// their owner or requestor by email; an item may point at a request by key.
type File struct {
	Users    []UserEntry    `yaml:"users"`
	Requests []RequestEntry `yaml:"requests"`
	Items    []ItemEntry    `yaml:"items"`
}

type UserEntry struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type RequestEntry struct {
	Key         string `yaml:"key"`
	Requestor   string `yaml:"requestor"`
	Description string `yaml:"description"`
}

type ItemEntry struct {
	Owner       string `yaml:"owner"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
	Request     string `yaml:"request"`
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

type RequestStore interface {
	ListByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error)
	CreateRequest(ctx context.Context, requestorID int64, description string) (*models.Request, error)
}

type ItemStore interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemDetail, error)
	CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
}

// Result counts the records created by one Apply run.
type Result struct {
	Users    int `yaml:"users"`
	Requests int `yaml:"requests"`
	Items    int `yaml:"items"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if err := models.ValidateName(u.Name); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if err := models.ValidateEmail(u.Email); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		emails[models.FoldCase(u.Email)] = true
	}

	keys := make(map[string]bool, len(f.Requests))
	for i, r := range f.Requests {
		if r.Key == "" || strings.TrimSpace(r.Description) == "" {
			return fmt.Errorf("requests[%d]: key and description are required", i)
		}
		if keys[r.Key] {
			return fmt.Errorf("requests[%d]: duplicate key %q", i, r.Key)
		}
		keys[r.Key] = true
		if !emails[models.FoldCase(r.Requestor)] {
			return fmt.Errorf("requests[%d]: unknown requestor %q", i, r.Requestor)
		}
	}

	for i, it := range f.Items {
		if err := models.ValidateName(it.Name); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("items[%d]: description must not be blank", i)
		}
		if !emails[models.FoldCase(it.Owner)] {
			return fmt.Errorf("items[%d]: unknown owner %q", i, it.Owner)
		}
		if it.Request != "" && !keys[it.Request] {
			return fmt.Errorf("items[%d]: unknown request %q", i, it.Request)
		}
	}
	return nil
}

// Loader applies seed files through the regular services, so every domain
// rule holds for seeded records. Records that already exist are skipped:
// users by email, requests by requestor and description, items by owner and name.
type Loader struct {
	users    UserStore
	requests RequestStore
	items    ItemStore
	logger   *zerolog.Logger
}

func NewLoader(users UserStore, requests RequestStore, items ItemStore, logger *zerolog.Logger) *Loader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{users: users, requests: requests, items: items, logger: logger}
}

func (l *Loader) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}

	existing, err := l.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	userIDs := make(map[string]int64, len(existing))
	for _, u := range existing {
		userIDs[models.FoldCase(u.Email)] = u.ID
	}

	for _, entry := range f.Users {
		email := models.FoldCase(entry.Email)
		if _, ok := userIDs[email]; ok {
			continue
		}
		created, err := l.users.CreateUser(ctx, &models.User{Name: entry.Name, Email: entry.Email})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", entry.Email, err)
		}
		userIDs[email] = created.ID
		res.Users++
	}

	requestIDs := make(map[string]int64, len(f.Requests))
	for _, entry := range f.Requests {
		requestorID := userIDs[models.FoldCase(entry.Requestor)]
		id, created, err := l.ensureRequest(ctx, requestorID, entry.Description)
		if err != nil {
			return nil, fmt.Errorf("seed request %s: %w", entry.Key, err)
		}
		requestIDs[entry.Key] = id
		if created {
			res.Requests++
		}
	}

	owned := make(map[int64]map[string]bool)
	for _, entry := range f.Items {
		ownerID := userIDs[models.FoldCase(entry.Owner)]
		names, ok := owned[ownerID]
		if !ok {
			details, err := l.items.ListByOwner(ctx, ownerID)
			if err != nil {
				return nil, err
			}
			names = make(map[string]bool, len(details))
			for _, d := range details {
				names[d.Name] = true
			}
			owned[ownerID] = names
		}
		if names[entry.Name] {
			continue
		}

		item := &models.Item{Name: entry.Name, Description: entry.Description, Available: entry.Available}
		if entry.Request != "" {
			reqID := requestIDs[entry.Request]
			item.RequestID = &reqID
		}
		if _, err := l.items.CreateItem(ctx, ownerID, item); err != nil {
			return nil, fmt.Errorf("seed item %s: %w", entry.Name, err)
		}
		names[entry.Name] = true
		res.Items++
	}

	l.logger.Info().
		Int("users", res.Users).
		Int("requests", res.Requests).
		Int("items", res.Items).
		Msg("seed applied")
	return res, nil
}

func (l *Loader) ensureRequest(ctx context.Context, requestorID int64, description string) (int64, bool, error) {
	current, err := l.requests.ListByRequestor(ctx, requestorID)
	if err != nil {
		return 0, false, err
	}
	for _, r := range current {
		if r.Description == description {
			return r.ID, false, nil
		}
	}
	created, err := l.requests.CreateRequest(ctx, requestorID, description)
	if err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}
