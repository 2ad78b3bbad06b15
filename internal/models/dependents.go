package models

import "time"

// Team-owned records removed when a team is terminated.

type ChatRoom struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	TeamID    string    `json:"teamId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Availability struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type Task struct {
	ID          string     `json:"id"`
	TeamID      string     `json:"teamId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy"`
}

type Event struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"teamId"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	Location string    `json:"location"`
}
