package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
// Storage keys and raw content never appear here.
type DocumentResponse struct {
	DocumentID          string         `json:"documentId"`
	Filename            string         `json:"fileName"`
	DocumentType        DocumentType   `json:"documentType"`
	Description         string         `json:"description,omitempty"`
	SizeBytes           int64          `json:"sizeBytes"`
	FileSizeMB          float64        `json:"fileSizeMb"`
	ContentHash         string         `json:"contentHash"`
	MimeType            string         `json:"mimeType"`
	Status              Status         `json:"status"`
	ProcessingStartedAt *time.Time     `json:"processingStartedAt,omitempty"`
	ProcessingEndedAt   *time.Time     `json:"processingEndedAt,omitempty"`
	ProcessingMs        *int64         `json:"processingMs,omitempty"`
	ProcessingError     string         `json:"processingError,omitempty"`
	AnalysisResults     map[string]any `json:"analysisResults,omitempty"`
	ConfidenceScore     *float64       `json:"confidenceScore,omitempty"`
	IsPasswordProtected bool           `json:"isPasswordProtected"`
	Tags                []string       `json:"tags"`
	IsArchived          bool           `json:"isArchived"`
	UploadedAt          time.Time      `json:"uploadedAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// StatsResponse aggregates an owner's documents.
type StatsResponse struct {
	TotalDocuments int                  `json:"totalDocuments"`
	TotalSizeBytes int64                `json:"totalSizeBytes"`
	TotalSizeMB    float64              `json:"totalSizeMb"`
	Uploaded       int                  `json:"uploaded"`
	Processing     int                  `json:"processing"`
	Completed      int                  `json:"completed"`
	Failed         int                  `json:"failed"`
	Archived       int                  `json:"archived"`
	ByType         map[DocumentType]int `json:"byType"`
}

func toResponse(doc Document) DocumentResponse {
	resp := DocumentResponse{
		DocumentID:          doc.ID,
		Filename:            doc.Filename,
		DocumentType:        doc.DocumentType,
		Description:         doc.Description,
		SizeBytes:           doc.FileSize,
		FileSizeMB:          doc.FileSizeMB(),
		ContentHash:         doc.ContentHash,
		MimeType:            doc.MimeType,
		Status:              doc.Status,
		ProcessingStartedAt: doc.ProcessingStartedAt,
		ProcessingEndedAt:   doc.ProcessingCompletedAt,
		ProcessingError:     doc.ProcessingError,
		AnalysisResults:     doc.AnalysisResults,
		ConfidenceScore:     doc.ConfidenceScore,
		IsPasswordProtected: doc.IsPasswordProtected,
		Tags:                doc.Tags,
		IsArchived:          doc.IsArchived,
		UploadedAt:          doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if dur := doc.ProcessingDuration(); dur != nil {
		ms := dur.Milliseconds()
		resp.ProcessingMs = &ms
	}
	return resp
}

func toStatsResponse(s Stats) StatsResponse {
	resp := StatsResponse{
		TotalDocuments: s.TotalDocuments,
		TotalSizeBytes: s.TotalSizeBytes,
		TotalSizeMB:    float64(s.TotalSizeBytes) / (1 << 20),
		Uploaded:       s.Uploaded,
		Processing:     s.Processing,
		Completed:      s.Completed,
		Failed:         s.Failed,
		Archived:       s.Archived,
		ByType:         s.ByType,
	}
	if resp.ByType == nil {
		resp.ByType = map[DocumentType]int{}
	}
	return resp
}
