package cansim

import "testing"

func testRouter(onMessage func(string)) *router {
	if onMessage == nil {
		onMessage = func(string) {}
	}
	return newRouter(&Config{OnMessage: onMessage})
}

func TestRouterResponseOverwrite(t *testing.T) {
	r := testRouter(nil)

	first := &Response{Command: "ping", Status: "ok"}
	second := &Response{Command: "ping", Status: "error"}
	r.dispatch(first)
	r.dispatch(second)

	got, ok := r.take("ping")
	if !ok {
		t.Fatal("take() found nothing")
	}
	if got != second {
		t.Errorf("take() = %+v, want the later response", got)
	}
	if _, ok := r.take("ping"); ok {
		t.Error("second take() should find nothing")
	}
}

func TestRouterStatusObserver(t *testing.T) {
	r := testRouter(nil)

	// no observer registered: update is dropped, not buffered
	r.dispatch(&Status{Vehicle: "VWT7"})

	var got *Status
	r.setOnStatus(func(s *Status) { got = s })
	update := &Status{Vehicle: "VWT6", Gear: "DRIVE", Speed: 80}
	r.dispatch(update)

	if got != update {
		t.Errorf("observer got %+v, want %+v", got, update)
	}
	if _, ok := r.take(""); ok {
		t.Error("status update must not land in the response store")
	}
}

func TestRouterErrorAlwaysLogged(t *testing.T) {
	var logged []string
	r := testRouter(func(msg string) { logged = append(logged, msg) })

	var observed string
	r.setOnError(func(msg string) { observed = msg })

	r.dispatch(&ErrorMessage{Message: "CAN bus off"})

	if observed != "CAN bus off" {
		t.Errorf("observer got %q", observed)
	}
	if len(logged) != 1 {
		t.Fatalf("error not surfaced through the log collaborator: %v", logged)
	}

	// still logged with no observer
	r.setOnError(nil)
	r.dispatch(&ErrorMessage{Message: "again"})
	if len(logged) != 2 {
		t.Errorf("error with no observer not logged: %v", logged)
	}
}

func TestRouterLogLineForwarded(t *testing.T) {
	var logged []string
	r := testRouter(func(msg string) { logged = append(logged, msg) })

	r.dispatch(&LogLine{Text: "boot complete"})

	if len(logged) != 1 || logged[0] != "boot complete" {
		t.Errorf("logged = %v", logged)
	}
}

func TestRouterEvict(t *testing.T) {
	r := testRouter(nil)
	r.dispatch(&Response{Command: "ping", Status: "ok"})
	r.evict("ping")
	if _, ok := r.take("ping"); ok {
		t.Error("evicted response still retrievable")
	}
}
