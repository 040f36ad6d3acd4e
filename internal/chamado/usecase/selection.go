package usecase

// selectRows applies the batch window to ascending row numbers: drop the
// first row when it is a header, keep rows at or after start, then cap at count.
func selectRows(numbers []int, skipHeader bool, start, count int) []int {
	if skipHeader && len(numbers) > 0 {
		numbers = numbers[1:]
	}

	selected := make([]int, 0, min(len(numbers), max(count, 0)))
	for _, n := range numbers {
		if len(selected) >= count {
			break
		}
		if n >= start {
			selected = append(selected, n)
		}
	}

	return selected
}
