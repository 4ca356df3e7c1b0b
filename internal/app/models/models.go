package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleStudent    RoleType = "STUDENT"
)

// Shift is a named daypart grouping of time slots
type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
)

// SlotUsage scopes a time slot to class or exam scheduling. Exams do not share
// slot-space with regular classes unless explicitly configured to.
type SlotUsage string

const (
	SlotUsageClass SlotUsage = "CLASS"
	SlotUsageExam  SlotUsage = "EXAM"
)

// RequestStatus is the lifecycle state of a course request
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// ReservationStatus is the state of a slot reservation
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// RoomType categorizes rooms; an offering's course declares which type it needs
type RoomType string

const (
	RoomClassroom  RoomType = "CLASSROOM"
	RoomLab        RoomType = "LAB"
	RoomAuditorium RoomType = "AUDITORIUM"
)
