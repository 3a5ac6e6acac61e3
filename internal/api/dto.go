package api

import (
	"encoding/json"
	"fmt"
	"time"

	"shareit/internal/models"
)

// DateTime is a timestamp carried as "2006-01-02T15:04:05" in the local zone.
type DateTime time.Time

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Local().Format(models.DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := time.ParseInLocation(models.DateTimeLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("timestamp %q must match %s", raw, models.DateTimeLayout)
	}
	*d = DateTime(t)
	return nil
}

func (d DateTime) Time() time.Time { return time.Time(d) }

type RefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toRef(r models.Ref) RefDTO {
	return RefDTO{ID: r.ID, Name: r.Name}
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

type CommentDTO struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}

func toCommentDTO(c *models.Comment) CommentDTO {
	return CommentDTO{ID: c.ID, Text: c.Text, AuthorName: c.Author.Name, Created: DateTime(c.CreatedAt)}
}

func toCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentDTO(&comments[i]))
	}
	return out
}

type BookingDTO struct {
	ID     int64    `json:"id"`
	Start  DateTime `json:"start"`
	End    DateTime `json:"end"`
	Item   RefDTO   `json:"item"`
	Booker RefDTO   `json:"booker"`
	Status string   `json:"status"`
}

func toBookingDTO(b *models.Booking) *BookingDTO {
	if b == nil {
		return nil
	}
	return &BookingDTO{
		ID:     b.ID,
		Start:  DateTime(b.Start),
		End:    DateTime(b.End),
		Item:   toRef(b.Item),
		Booker: toRef(b.Booker),
		Status: b.Status,
	}
}

func toBookingDTOs(bookings []models.Booking) []*BookingDTO {
	out := make([]*BookingDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingDTO(&bookings[i]))
	}
	return out
}

type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Owner       RefDTO `json:"owner"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

func toItemDTO(i *models.Item) ItemDTO {
	return ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		Owner:       toRef(i.Owner),
		RequestID:   i.RequestID,
	}
}

type ItemWithCommentsDTO struct {
	ItemDTO
	Comments []CommentDTO `json:"comments"`
}

func toItemsWithComments(details []models.ItemDetail) []ItemWithCommentsDTO {
	out := make([]ItemWithCommentsDTO, 0, len(details))
	for i := range details {
		out = append(out, ItemWithCommentsDTO{
			ItemDTO:  toItemDTO(&details[i].Item),
			Comments: toCommentDTOs(details[i].Comments),
		})
	}
	return out
}

type ItemDetailDTO struct {
	ItemDTO
	Comments    []CommentDTO `json:"comments"`
	LastBooking *BookingDTO  `json:"lastBooking"`
	NextBooking *BookingDTO  `json:"nextBooking"`
}

func toItemDetailDTO(d *models.ItemDetail) ItemDetailDTO {
	return ItemDetailDTO{
		ItemDTO:     toItemDTO(&d.Item),
		Comments:    toCommentDTOs(d.Comments),
		LastBooking: toBookingDTO(d.LastBooking),
		NextBooking: toBookingDTO(d.NextBooking),
	}
}

type RequestDTO struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Requestor   RefDTO   `json:"requestor"`
	Created     DateTime `json:"created"`
}

func toRequestDTO(r *models.Request) RequestDTO {
	return RequestDTO{ID: r.ID, Description: r.Description, Requestor: toRef(r.Requestor), Created: DateTime(r.CreatedAt)}
}

func toRequestDTOs(requests []models.Request) []RequestDTO {
	out := make([]RequestDTO, 0, len(requests))
	for i := range requests {
		out = append(out, toRequestDTO(&requests[i]))
	}
	return out
}

type RequestWithItemsDTO struct {
	RequestDTO
	Items []ItemDTO `json:"items"`
}

func toRequestWithItemsDTO(r *models.RequestWithItems) RequestWithItemsDTO {
	items := make([]ItemDTO, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, toItemDTO(&r.Items[i]))
	}
	return RequestWithItemsDTO{RequestDTO: toRequestDTO(&r.Request), Items: items}
}

// Request bodies. Pointer fields distinguish "absent" from zero values.

type userBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type itemBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

type commentBody struct {
	Text string `json:"text"`
}

type bookingBody struct {
	ItemID int64     `json:"itemId"`
	Start  *DateTime `json:"start"`
	End    *DateTime `json:"end"`
}

type requestBody struct {
	Description string `json:"description"`
}
