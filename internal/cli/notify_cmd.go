package cli

import "time"

type notificationView struct {
	ID        int64     `json:"id"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *CLI) notifications(args []string) error {
	f := c.newFlags("notifications")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("notifications", positional); err != nil {
		return err
	}

	items := c.queue.List()
	views := make([]notificationView, 0, len(items))
	rows := make([][]string, 0, len(items))
	for _, n := range items {
		views = append(views, notificationView{
			ID:        n.ID,
			Severity:  string(n.Severity),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
		rows = append(rows, []string{itoa(n.ID), string(n.Severity), n.Message, n.CreatedAt.Local().Format(time.TimeOnly)})
	}

	return c.emit(f.json, views, []string{"ID", "SEVERITY", "MESSAGE", "AT"}, rows)
}

func (c *CLI) dismiss(args []string) error {
	f := c.newFlags("dismiss")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("dismiss", positional)
	if err != nil {
		return err
	}

	c.queue.Remove(id)
	return nil
}
