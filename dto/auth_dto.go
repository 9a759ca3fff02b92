package dto

type SignupDTO struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateProfileDTO struct {
	Username string `json:"username" binding:"required"`
}

type BanUserDTO struct {
	Ban *bool `json:"ban" binding:"required"`
}
