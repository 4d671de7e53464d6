package holiday

type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"required,max=120"`
	Type string `json:"type" binding:"required"`
}

type UpdateHolidayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"required,max=120"`
	Type string `json:"type" binding:"required"`
}

type HolidayFilter struct {
	From string
	To   string
	Year int
}

type HolidayResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}
