package placeholder

// Shape maps a placeholder name to the number of times every locale of an
// email is expected to use it.
type Shape map[string]int

// Shapes maps an email name to its shape. It is the content of the
// placeholders config file.
type Shapes map[string]Shape

// Reduce combines the counts of every locale of one email into its shape.
// Each name takes the highest count seen in any locale; a locale that lacks
// a name never lowers it.
func Reduce(localeCounts map[string]Counts) Shape {
	shape := make(Shape)
	for _, counts := range localeCounts {
		for name, count := range counts {
			if current, ok := shape[name]; ok && current >= count {
				continue
			}
			shape[name] = count
		}
	}
	return shape
}

// ReduceAll reduces counts grouped by email then locale into Shapes.
func ReduceAll(emailCounts map[string]map[string]Counts) Shapes {
	shapes := make(Shapes, len(emailCounts))
	for email, localeCounts := range emailCounts {
		shapes[email] = Reduce(localeCounts)
	}
	return shapes
}
