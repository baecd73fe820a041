package models

// Course is a sellable programme.
type Course struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Batch is a scheduled offering of a course.
type Batch struct {
	ID          int64   `json:"id"`
	CourseID    int64   `json:"course_id"`
	StartDate   string  `json:"start_date"`
	Timings     string  `json:"timings"`
	MeetingLink *string `json:"meeting_link"`
}

// CreateBatchRequest schedules a new batch.
type CreateBatchRequest struct {
	CourseID    int64  `json:"course_id" form:"course_id" validate:"required,gt=0"`
	StartDate   string `json:"start_date" form:"start_date" validate:"required"`
	Timings     string `json:"timings" form:"timings" validate:"required"`
	MeetingLink string `json:"meeting_link,omitempty" form:"meeting_link" validate:"omitempty,url"`
}

// EnrollmentRequest enrolls an existing student directly.
type EnrollmentRequest struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	BatchID   int64   `json:"batch_id" validate:"required,gt=0"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// Enrollment is the backend record of a student in a batch.
type Enrollment struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	BatchID   int64  `json:"batch_id"`
	Status    string `json:"status"`
}

// LeadEnrollmentRequest converts a lead into an enrolled student.
type LeadEnrollmentRequest struct {
	LeadID  int64 `json:"lead_id" validate:"required,gt=0"`
	BatchID int64 `json:"batch_id" validate:"required,gt=0"`
}

// LeadEnrollmentResult is returned when a lead is converted.
type LeadEnrollmentResult struct {
	Message   string `json:"message"`
	StudentID int64  `json:"student_id"`
}
