package types

// PullRequest identifies the pull request an analysis ran for
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
	URL    string
	Title  string
}
