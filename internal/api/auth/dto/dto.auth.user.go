package authdto

// RegisterInput dữ liệu đầu vào khi đăng ký tài khoản
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput dữ liệu đầu vào khi đăng nhập
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult trả về sau khi đăng nhập thành công
type LoginResult struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}
