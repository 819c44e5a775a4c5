package users

type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=50"`
	Avatar *string `json:"avatar" binding:"omitempty,max=255,url"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required,min=6,max=50"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}
