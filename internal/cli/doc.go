// Package cli provides the interactive terminal dashboard for bidmatch.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. The dashboard is one [App] model holding a stack
// of pages; each page follows the Model-View-Update architecture and owns
// its own resource controllers, staging buffer and debounce gate. Pages do
// not share state: leaving a page cancels its requests and releases its
// staged files.
//
// # Pages
//
//   - Login: email and password sign-in
//   - Menu: role-aware list of sections
//   - Projects: paginated list with detail, create, edit and delete
//   - Subscriptions: plans and subscription cancel
//   - Transactions: payment history table
//   - Contractors: search-as-you-type with ratings
//   - Profile: account details
//
// # Messages
//
// Network calls run in tea.Cmd goroutines and report back with messages.
// The App forwards key presses to the top page only and every other
// message to all live pages, so a list that is still loading underneath a
// detail page completes normally. Messages for a closed page are dropped.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
