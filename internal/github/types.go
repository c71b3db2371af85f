package github

import "time"

// User is the compact account object embedded in other resources.
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type,omitempty"`
}

// Contributor is an entry of /repos/{owner}/{repo}/contributors.
type Contributor struct {
	User
	Contributions int `json:"contributions"`
}

// Repository is the object returned by /repos/{owner}/{repo}.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// OrgRepository is an entry of /orgs/{org}/repos.
type OrgRepository struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	HTMLURL         string `json:"html_url"`
	Fork            bool   `json:"fork"`
	Archived        bool   `json:"archived"`
	StargazersCount int    `json:"stargazers_count"`
}

// Week is one week of contributor activity: additions, deletions, commits.
type Week struct {
	W int64 `json:"w"`
	A int   `json:"a"`
	D int   `json:"d"`
	C int   `json:"c"`
}

// ContributorStat is an entry of /repos/{owner}/{repo}/stats/contributors.
type ContributorStat struct {
	Author *User  `json:"author"`
	Total  int    `json:"total"`
	Weeks  []Week `json:"weeks"`
}

// Additions sums additions over all weeks.
func (s ContributorStat) Additions() int {
	n := 0
	for _, w := range s.Weeks {
		n += w.A
	}
	return n
}

// Deletions sums deletions over all weeks.
func (s ContributorStat) Deletions() int {
	n := 0
	for _, w := range s.Weeks {
		n += w.D
	}
	return n
}

// CommitAuthor is the git-level author of a commit.
type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// CommitDetail is the git commit embedded in a Commit.
type CommitDetail struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// Commit is an entry of /repos/{owner}/{repo}/commits.
type Commit struct {
	SHA     string       `json:"sha"`
	Commit  CommitDetail `json:"commit"`
	Author  *User        `json:"author"`
	HTMLURL string       `json:"html_url"`
}

// Release is an entry of /repos/{owner}/{repo}/releases.
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Author      User      `json:"author"`
}
