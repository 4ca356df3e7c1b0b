package dto

// PromoteSectionRequest rolls a section over into a new semester
type PromoteSectionRequest struct {
	NewSemester    int  `json:"new_semester" binding:"required,gt=0" example:"6"`
	PromoteCourses bool `json:"promote_courses" example:"true"`
}

// PromoteSectionResponse summarizes the rollover
type PromoteSectionResponse struct {
	SectionID        int64 `json:"sectionId"`
	NewSemester      int   `json:"newSemester"`
	OfferingsCreated int   `json:"offeringsCreated"`
	RecordsWritten   int   `json:"recordsWritten"`
}
