package models

import "time"

// ControlTest — тест контроля: единица аудиторской работы,
// вокруг которой группируются рабочие документы и исключения.
type ControlTest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Objective   string    `json:"objective"`
	Status      string    `json:"status"`
	Owner       int64     `json:"owner"`
	DueDate     string    `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Description string    `json:"description,omitempty"`
}

// ControlTestInput — тело create/update для теста контроля.
// Указатели отличают "не менять поле" от "записать пустое значение"
// (PATCH-семантика бэкенда).
type ControlTestInput struct {
	Name        *string `json:"name,omitempty"`
	Objective   *string `json:"objective,omitempty"`
	Status      *string `json:"status,omitempty"`
	Owner       *int64  `json:"owner,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Workpaper — рабочий документ, привязанный к тесту контроля.
type Workpaper struct {
	ID          int64     `json:"id"`
	ControlTest int64     `json:"control_test"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Reviewer    int64     `json:"reviewer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkpaperInput — тело create/update рабочего документа.
type WorkpaperInput struct {
	ControlTest *int64  `json:"control_test,omitempty"`
	Title       *string `json:"title,omitempty"`
	Status      *string `json:"status,omitempty"`
	Reviewer    *int64  `json:"reviewer,omitempty"`
}

// Evidence — свидетельство (файл), приложенное к рабочему документу.
// File — URL содержимого, выдаваемый бэкендом; загрузка идёт
// multipart-запросом (см. api.Evidence.Upload).
type Evidence struct {
	ID         int64     `json:"id"`
	Workpaper  int64     `json:"workpaper"`
	Title      string    `json:"title"`
	File       string    `json:"file"`
	UploadedBy int64     `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Exception — расхождение, обнаруженное в ходе теста контроля.
type Exception struct {
	ID          int64     `json:"id"`
	ControlTest int64     `json:"control_test"`
	Summary     string    `json:"summary"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	RaisedBy    int64     `json:"raised_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExceptionInput — тело create/update исключения.
type ExceptionInput struct {
	ControlTest *int64  `json:"control_test,omitempty"`
	Summary     *string `json:"summary,omitempty"`
	Severity    *string `json:"severity,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ExceptionNote — комментарий к исключению.
type ExceptionNote struct {
	ID        int64     `json:"id"`
	Exception int64     `json:"exception"`
	Author    int64     `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ExceptionNoteInput — тело создания комментария.
type ExceptionNoteInput struct {
	Exception int64  `json:"exception"`
	Text      string `json:"text"`
}

// Remediation — план устранения по исключению.
type Remediation struct {
	ID        int64     `json:"id"`
	Exception int64     `json:"exception"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Assignee  int64     `json:"assignee,omitempty"`
	DueDate   string    `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemediationInput — тело create/update плана устранения.
type RemediationInput struct {
	Exception *int64  `json:"exception,omitempty"`
	Action    *string `json:"action,omitempty"`
	Status    *string `json:"status,omitempty"`
	Assignee  *int64  `json:"assignee,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
}
