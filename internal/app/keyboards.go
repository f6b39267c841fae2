package app

import "gopkg.in/telebot.v3"

const categoriesPerRow = 2

// MainKeyboard is the persistent menu shown after most replies.
func MainKeyboard() *telebot.ReplyMarkup {
	rm := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rm.Reply(
		rm.Row(rm.Text(BtnGetTask)),
		rm.Row(rm.Text(BtnStatistics), rm.Text(BtnReset)),
	)
	return rm
}

// CategoriesKeyboard lists "all categories" first, then the categories two per row, then "back".
func CategoriesKeyboard(categories []string) *telebot.ReplyMarkup {
	rm := &telebot.ReplyMarkup{ResizeKeyboard: true}

	rows := make([]telebot.Row, 0, len(categories)/categoriesPerRow+3)
	rows = append(rows, rm.Row(rm.Text(BtnAllCategories)))

	var row []telebot.Btn
	for _, c := range categories {
		row = append(row, rm.Text(CategoryPrefix+c))
		if len(row) == categoriesPerRow {
			rows = append(rows, rm.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, rm.Row(row...))
	}

	rows = append(rows, rm.Row(rm.Text(BtnBack)))
	rm.Reply(rows...)
	return rm
}
