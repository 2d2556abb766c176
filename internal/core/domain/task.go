package domain

// Task is the unit of build work whose executions are recorded.
type Task struct {
	// Path uniquely and stably identifies the task across builds.
	Path string
	// OutputFiles are the absolute paths the task declares as outputs.
	// Duplicates are allowed and collapse when recorded.
	OutputFiles []string
	// Types resolves the custom property kinds this task's records may carry.
	// A nil registry resolves nothing.
	Types *TypeRegistry
}
