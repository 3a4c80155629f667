package dto

type StyleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	BgColor  string `json:"bg_color" validate:"required,hexcolor"`
	FontSize int    `json:"font_size" validate:"required,min=10,max=48"`
}
