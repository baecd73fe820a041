package models

// ClassSession is one of the signed-in student's upcoming classes.
type ClassSession struct {
	Title      string  `json:"title"`
	Time       string  `json:"time"`
	Instructor string  `json:"instructor"`
	Link       *string `json:"link"`
	Status     string  `json:"status"`
}

// Certificate issued to the signed-in student.
type Certificate struct {
	ID         int64  `json:"id"`
	CourseName string `json:"course_name"`
	IssueDate  string `json:"issue_date"`
	URL        string `json:"url"`
}

// CertificateRequest asks the backend to issue a certificate.
type CertificateRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	CourseID  int64 `json:"course_id" validate:"required,gt=0"`
}

// CertificateResult reports the issued (or already existing) certificate.
type CertificateResult struct {
	Message       string `json:"message"`
	CertificateID int64  `json:"certificate_id"`
}

type Assignment struct {
	ID          int64  `json:"id"`
	BatchID     int64  `json:"batch_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

type Submission struct {
	ID           int64   `json:"id"`
	AssignmentID int64   `json:"assignment_id"`
	StudentID    int64   `json:"student_id"`
	Content      string  `json:"content"`
	FileURL      *string `json:"file_url"`
	Status       string  `json:"status"`
	Feedback     *string `json:"feedback"`
	Grade        *string `json:"grade"`
}

// SubmissionRequest turns in an assignment.
type SubmissionRequest struct {
	AssignmentID int64  `json:"assignment_id" form:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" form:"content" validate:"required"`
	FileURL      string `json:"file_url,omitempty" form:"file_url" validate:"omitempty,url"`
}
