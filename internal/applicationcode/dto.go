package applicationcode

type CodeResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CodesResponse struct {
	ApplicationCodes []CodeResponse `json:"application_codes"`
}

func (c *ApplicationCode) ToResponse() CodeResponse {
	return CodeResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
	}
}
