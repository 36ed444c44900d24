package models

import (
	"time"
)

type CustomerStatus string

const (
	StatusWaiting   CustomerStatus = "waiting"
	StatusAllocated CustomerStatus = "allocated"
)

// CustomerRecord is one queue join. QueueNumber is only unique inside a live
// queue; numbers are recycled after every cleanup.
type CustomerRecord struct {
	QueueNumber string         `json:"queue_number"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	Guests      int            `json:"guests"`
	JoinedAt    time.Time      `json:"joined_at"`
	AllocatedAt *time.Time     `json:"allocated_at"`
	TableNo     *string        `json:"table_no"`
	Status      CustomerStatus `json:"status"`
}

// Allocate seats the customer. AllocatedAt, TableNo and Status always move together.
func (c *CustomerRecord) Allocate(tableNo string, at time.Time) {
	c.TableNo = &tableNo
	c.AllocatedAt = &at
	c.Status = StatusAllocated
}

func (c CustomerRecord) IsAllocated() bool {
	return c.Status == StatusAllocated && c.AllocatedAt != nil && c.TableNo != nil
}

// Normalized returns a copy holding only persisted fields, with the
// allocation fields made consistent with Status.
func (c CustomerRecord) Normalized() CustomerRecord {
	out := CustomerRecord{
		QueueNumber: c.QueueNumber,
		Name:        c.Name,
		Phone:       c.Phone,
		Guests:      c.Guests,
		JoinedAt:    c.JoinedAt,
		Status:      StatusWaiting,
	}
	if c.AllocatedAt != nil && c.TableNo != nil {
		at := *c.AllocatedAt
		table := *c.TableNo
		out.AllocatedAt = &at
		out.TableNo = &table
		out.Status = StatusAllocated
	}
	return out
}
