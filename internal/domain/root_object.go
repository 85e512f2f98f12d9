package domain

// BlogPost is a commentable root object
type BlogPost struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name for BlogPost
func (BlogPost) TableName() string {
	return "blog_posts"
}

// UserPage is a commentable root object
type UserPage struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name for UserPage
func (UserPage) TableName() string {
	return "user_pages"
}

// AnotherObject is a commentable root object
type AnotherObject struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name for AnotherObject
func (AnotherObject) TableName() string {
	return "another_objects"
}

// RootObjectTable returns the table backing a root-object kind
func RootObjectTable(kind TargetKind) (string, bool) {
	switch kind {
	case TargetKindBlogPost:
		return BlogPost{}.TableName(), true
	case TargetKindUserPage:
		return UserPage{}.TableName(), true
	case TargetKindAnotherObject:
		return AnotherObject{}.TableName(), true
	}
	return "", false
}

// User is an authenticated identity; comments and history entries reference it
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(150);not null;uniqueIndex:uq_users_username" json:"username"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
