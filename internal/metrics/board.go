package metrics

const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
)

// RecordBoardCommand counts one board command and whether it changed the board.
func (m *Metrics) RecordBoardCommand(command string, applied bool) {
	m.safeExecute("RecordBoardCommand", func() {
		result := ResultNoop
		if applied {
			result = ResultApplied
		}
		m.BoardCommandsTotal.WithLabelValues(command, result).Inc()
	})
}

func (m *Metrics) SetBoardsOpen(count int) {
	m.safeExecute("SetBoardsOpen", func() {
		m.BoardsOpen.Set(float64(count))
	})
}

func (m *Metrics) StreamOpened() {
	m.safeExecute("StreamOpened", func() {
		m.StreamClients.Inc()
	})
}

func (m *Metrics) StreamClosed() {
	m.safeExecute("StreamClosed", func() {
		m.StreamClients.Dec()
	})
}
