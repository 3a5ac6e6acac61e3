package api

import (
	"strconv"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func parseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.Validation("header %s is required", models.HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("header %s must be a positive integer", models.HeaderUserID)
	}
	return id, nil
}

func parsePathID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation("%s must be an integer", name)
	}
	return id, nil
}

func validName(name string) error {
	if err := models.ValidateName(name); err != nil {
		return domain.Validation("%s", err)
	}
	return nil
}

func validEmail(email string) error {
	if err := models.ValidateEmail(email); err != nil {
		return domain.Validation("%s", err)
	}
	return nil
}

func (b userBody) validateCreate() error {
	if b.Name == nil {
		return domain.Validation("name must not be blank")
	}
	if err := validName(*b.Name); err != nil {
		return err
	}
	if b.Email == nil {
		return domain.Validation("email must not be blank")
	}
	return validEmail(*b.Email)
}

func (b userBody) validateUpdate() error {
	if b.Name != nil {
		if err := validName(*b.Name); err != nil {
			return err
		}
	}
	if b.Email != nil {
		return validEmail(*b.Email)
	}
	return nil
}

func (b itemBody) validateCreate() error {
	if b.Name == nil {
		return domain.Validation("name must not be blank")
	}
	if err := validName(*b.Name); err != nil {
		return err
	}
	if b.Description == nil || strings.TrimSpace(*b.Description) == "" {
		return domain.Validation("description must not be blank")
	}
	if b.Available == nil {
		return domain.Validation("available is required")
	}
	return nil
}

func (b itemBody) validateUpdate() error {
	if b.Name != nil {
		if err := validName(*b.Name); err != nil {
			return err
		}
	}
	if b.Description != nil && strings.TrimSpace(*b.Description) == "" {
		return domain.Validation("description must not be blank")
	}
	return nil
}

func (b bookingBody) validate(now time.Time) error {
	if b.ItemID <= 0 {
		return domain.Validation("itemId must be positive")
	}
	if b.Start == nil || b.End == nil {
		return domain.Validation("start and end are required")
	}
	if b.Start.Time().Before(now.Truncate(time.Second)) {
		return domain.Validation("start must not be in the past")
	}
	if !b.End.Time().After(now) {
		return domain.Validation("end must be in the future")
	}
	return nil
}

func parseState(raw string) (models.StateFilter, error) {
	filter, err := models.ParseStateFilter(raw)
	if err != nil {
		return "", domain.Validation("unknown state: %s", raw)
	}
	return filter, nil
}

func parseApproved(raw string) (bool, error) {
	approved, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, domain.Validation("approved must be true or false")
	}
	return approved, nil
}
