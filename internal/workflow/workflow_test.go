package workflow

import (
	"errors"
	"testing"
)

func TestApply_LifecycleEdges(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		req     Request
		want    State
		wantErr bool
	}{
		{
			name:  "gatherer submits new question",
			state: State{},
			req:   Request{Actor: RoleGatherer, Action: ActionSubmit},
			want:  State{Status: StatusPendingProcessor},
		},
		{
			name:    "processor cannot submit",
			state:   State{},
			req:     Request{Actor: RoleProcessor, Action: ActionSubmit},
			wantErr: true,
		},
		{
			name:    "double submit rejected",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleGatherer, Action: ActionSubmit},
			wantErr: true,
		},
		{
			name:  "accept to creator",
			state: State{Status: StatusPendingProcessor},
			req:   Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationCreator},
			want:  State{Status: StatusPendingCreator},
		},
		{
			name:  "accept to explainer",
			state: State{Status: StatusPendingProcessor},
			req:   Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationExplainer},
			want:  State{Status: StatusPendingExplainer},
		},
		{
			name:  "accept straight to approved",
			state: State{Status: StatusPendingProcessor},
			req:   Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationApproved},
			want:  State{Status: StatusApproved},
		},
		{
			name:  "accept straight to completed",
			state: State{Status: StatusPendingProcessor},
			req:   Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationCompleted},
			want:  State{Status: StatusCompleted},
		},
		{
			name:    "accept with unknown destination",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleProcessor, Action: ActionAccept, Destination: "elsewhere"},
			wantErr: true,
		},
		{
			name:    "accept from completed rejected",
			state:   State{Status: StatusCompleted},
			req:     Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationCreator},
			wantErr: true,
		},
		{
			name:    "gatherer cannot accept",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleGatherer, Action: ActionAccept, Destination: DestinationCreator},
			wantErr: true,
		},
		{
			name:    "accept blocked while flag pending",
			state:   State{Status: StatusPendingProcessor, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagPending}},
			req:     Request{Actor: RoleProcessor, Action: ActionAccept, Destination: DestinationCreator},
			wantErr: true,
		},
		{
			name:  "reject with reason",
			state: State{Status: StatusPendingProcessor},
			req:   Request{Actor: RoleProcessor, Action: ActionReject, Reason: "ambiguous wording"},
			want:  State{Status: StatusRejected},
		},
		{
			name:    "reject without reason",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleProcessor, Action: ActionReject},
			wantErr: true,
		},
		{
			name:  "gatherer resubmits rejected question",
			state: State{Status: StatusRejected},
			req:   Request{Actor: RoleGatherer, Action: ActionResubmit},
			want:  State{Status: StatusPendingProcessor},
		},
		{
			name:    "gatherer cannot resubmit completed question",
			state:   State{Status: StatusCompleted},
			req:     Request{Actor: RoleGatherer, Action: ActionResubmit},
			wantErr: true,
		},
		{
			name:  "creator submits update back to processor",
			state: State{Status: StatusPendingCreator},
			req:   Request{Actor: RoleCreator, Action: ActionSubmitUpdate},
			want:  State{Status: StatusPendingProcessor},
		},
		{
			name:  "creator variant submission returns original to processor",
			state: State{Status: StatusPendingCreator},
			req:   Request{Actor: RoleCreator, Action: ActionSubmitVariant},
			want:  State{Status: StatusPendingProcessor},
		},
		{
			name:    "creator cannot submit from explainer queue",
			state:   State{Status: StatusPendingExplainer},
			req:     Request{Actor: RoleCreator, Action: ActionSubmitUpdate},
			wantErr: true,
		},
		{
			name:  "explanation completes the question",
			state: State{Status: StatusPendingExplainer},
			req:   Request{Actor: RoleExplainer, Action: ActionSubmitExplanation},
			want:  State{Status: StatusCompleted},
		},
		{
			name:  "explanation routed back for review",
			state: State{Status: StatusPendingExplainer},
			req:   Request{Actor: RoleExplainer, Action: ActionSubmitExplanation, NeedsReview: true},
			want:  State{Status: StatusPendingProcessor},
		},
		{
			name:    "explanation from wrong status",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleExplainer, Action: ActionSubmitExplanation},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.state, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Apply() = %+v, want error", got)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Apply() error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApply_FlagOverlay(t *testing.T) {
	pendingStudentFlag := Flag{Raised: true, Type: RoleStudent, Status: FlagPending}

	tests := []struct {
		name    string
		state   State
		req     Request
		want    State
		wantErr bool
	}{
		{
			name:  "student flags completed question",
			state: State{Status: StatusCompleted},
			req:   Request{Actor: RoleStudent, Action: ActionRaiseFlag, Reason: "answer key wrong"},
			want:  State{Status: StatusCompleted, Flag: pendingStudentFlag},
		},
		{
			name:  "student flags approved question",
			state: State{Status: StatusApproved},
			req:   Request{Actor: RoleStudent, Action: ActionRaiseFlag, Reason: "typo"},
			want:  State{Status: StatusApproved, Flag: pendingStudentFlag},
		},
		{
			name:    "student cannot flag unpublished question",
			state:   State{Status: StatusPendingProcessor},
			req:     Request{Actor: RoleStudent, Action: ActionRaiseFlag, Reason: "typo"},
			wantErr: true,
		},
		{
			name:    "flag without reason",
			state:   State{Status: StatusCompleted},
			req:     Request{Actor: RoleStudent, Action: ActionRaiseFlag},
			wantErr: true,
		},
		{
			name:  "creator flags from its queue",
			state: State{Status: StatusPendingCreator},
			req:   Request{Actor: RoleCreator, Action: ActionRaiseFlag, Reason: "source unclear"},
			want:  State{Status: StatusPendingCreator, Flag: Flag{Raised: true, Type: RoleCreator, Status: FlagPending}},
		},
		{
			name:    "double flag rejected",
			state:   State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:     Request{Actor: RoleStudent, Action: ActionRaiseFlag, Reason: "again"},
			wantErr: true,
		},
		{
			name:    "gatherer cannot flag",
			state:   State{Status: StatusCompleted},
			req:     Request{Actor: RoleGatherer, Action: ActionRaiseFlag, Reason: "nope"},
			wantErr: true,
		},
		{
			name:  "processor approves flag in place",
			state: State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:   Request{Actor: RoleProcessor, Action: ActionApproveFlag},
			want:  State{Status: StatusCompleted, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagApproved}},
		},
		{
			name:  "approving twice is a no-op",
			state: State{Status: StatusCompleted, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagApproved}},
			req:   Request{Actor: RoleProcessor, Action: ActionApproveFlag},
			want:  State{Status: StatusCompleted, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagApproved}},
		},
		{
			name:  "approved student flag sent for correction lands with processor",
			state: State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:   Request{Actor: RoleProcessor, Action: ActionApproveFlag, SendForCorrection: true},
			want:  State{Status: StatusPendingProcessor, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagApproved}},
		},
		{
			name:  "approved explainer flag sent for correction lands with explainer",
			state: State{Status: StatusPendingExplainer, Flag: Flag{Raised: true, Type: RoleExplainer, Status: FlagPending}},
			req:   Request{Actor: RoleProcessor, Action: ActionApproveFlag, SendForCorrection: true},
			want:  State{Status: StatusPendingExplainer, Flag: Flag{Raised: true, Type: RoleExplainer, Status: FlagApproved}},
		},
		{
			name:  "approved creator flag sent for correction lands with creator",
			state: State{Status: StatusPendingCreator, Flag: Flag{Raised: true, Type: RoleCreator, Status: FlagPending}},
			req:   Request{Actor: RoleProcessor, Action: ActionApproveFlag, SendForCorrection: true},
			want:  State{Status: StatusPendingCreator, Flag: Flag{Raised: true, Type: RoleCreator, Status: FlagApproved}},
		},
		{
			name:    "approve without a flag",
			state:   State{Status: StatusCompleted},
			req:     Request{Actor: RoleProcessor, Action: ActionApproveFlag},
			wantErr: true,
		},
		{
			name:    "only processor approves flags",
			state:   State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:     Request{Actor: RoleCreator, Action: ActionApproveFlag},
			wantErr: true,
		},
		{
			name:  "processor rejects flag",
			state: State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:   Request{Actor: RoleProcessor, Action: ActionRejectFlag, Reason: "flag unsubstantiated"},
			want:  State{Status: StatusCompleted, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagRejected}},
		},
		{
			name:    "reject flag without reason",
			state:   State{Status: StatusCompleted, Flag: pendingStudentFlag},
			req:     Request{Actor: RoleProcessor, Action: ActionRejectFlag},
			wantErr: true,
		},
		{
			name:    "reject flag twice",
			state:   State{Status: StatusCompleted, Flag: Flag{Raised: true, Type: RoleStudent, Status: FlagRejected}},
			req:     Request{Actor: RoleProcessor, Action: ActionRejectFlag, Reason: "again"},
			wantErr: true,
		},
		{
			name:  "resubmit clears approved flag",
			state: State{Status: StatusPendingExplainer, Flag: Flag{Raised: true, Type: RoleExplainer, Status: FlagApproved}},
			req:   Request{Actor: RoleExplainer, Action: ActionResubmit},
			want:  State{Status: StatusPendingProcessor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.state, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Apply() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFlag_Visible(t *testing.T) {
	tests := []struct {
		flag Flag
		want bool
	}{
		{Flag{}, false},
		{Flag{Raised: true, Status: FlagPending}, false},
		{Flag{Raised: true, Status: FlagApproved}, true},
		{Flag{Raised: true, Status: FlagRejected}, false},
		{Flag{Raised: false, Status: FlagApproved}, false},
	}
	for _, tt := range tests {
		if got := tt.flag.Visible(); got != tt.want {
			t.Errorf("Flag(%+v).Visible() = %v, want %v", tt.flag, got, tt.want)
		}
	}
}

func TestStatus_IsValid(t *testing.T) {
	valid := []Status{
		StatusPendingProcessor, StatusPendingCreator, StatusPendingExplainer,
		StatusApproved, StatusCompleted, StatusRejected,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("Status(%q).IsValid() = false, want true", s)
		}
	}
	for _, s := range []Status{StatusNone, "archived", "PENDING_PROCESSOR"} {
		if s.IsValid() {
			t.Errorf("Status(%q).IsValid() = true, want false", s)
		}
	}
}
