package services

// Client-facing messages shared across services.
const (
	msgEmailTaken           = "Email already registered"
	msgWalletTaken          = "Wallet address already registered"
	msgAccountTaken         = "Email or wallet address already registered"
	msgUserNotFound         = "User not found"
	msgPatientNotFound      = "Patient not found"
	msgAppointmentNotFound  = "Appointment not found"
	msgRecordNotFound       = "Record not found"
	msgBuiltinAdminReadOnly = "The built-in administrator cannot be modified"
	msgCannotDeleteSelf     = "You cannot delete your own account"
	msgCannotChangeOwnRole  = "You cannot change your own role"
	msgNotAssignedDoctor    = "Only the assigned doctor can modify this appointment"
	msgOwnRecordsOnly       = "You can only upload records to your own wallet"
	msgInvalidDoctor        = "Invalid doctor selected"
	msgDateNotInFuture      = "Appointment date must be in the future"
	msgInvalidStatus        = "Invalid status. Must be one of: pending, confirmed, completed, cancelled"
	msgInvalidRole          = "Invalid role. Must be one of: Admin, Doctor, Patient"
	msgInvalidPriority      = "Invalid priority. Must be one of: low, medium, high, urgent"
	msgPasswordsRequired    = "Current password and new password are required"
	msgCurrentPasswordWrong = "Current password is incorrect"
	msgPasswordUnchanged    = "New password must be different from current password"
	msgInvalidResetCode     = "Invalid or expired reset code"
	msgLockBusy             = "Another request is modifying this account, please retry"
	msgCacheUnavailable     = "Cache not connected"
	msgDatabaseUnavailable  = "Database not connected"
)
